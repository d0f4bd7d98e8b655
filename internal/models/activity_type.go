package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDailyLimit applies when an activity type has no daily_limit set
const DefaultDailyLimit = 3

// ActivityIcon is the closed set of activity categories clients know how to draw.
type ActivityIcon string

const (
	IconSun           ActivityIcon = "sun"
	IconShoppingBag   ActivityIcon = "shopping-bag"
	IconCar           ActivityIcon = "car"
	IconBus           ActivityIcon = "bus"
	IconBike          ActivityIcon = "bike"
	IconTreeDeciduous ActivityIcon = "tree-deciduous"
	IconTrash         ActivityIcon = "trash"
	IconLeaf          ActivityIcon = "leaf"
	IconRecycle       ActivityIcon = "recycle"
	IconSalad         ActivityIcon = "salad"
	IconFlower        ActivityIcon = "flower"
)

var ErrUnknownIcon = errors.New("unknown activity icon")

// ParseActivityIcon normalises s to an ActivityIcon. An empty value means leaf;
// anything outside the known set is rejected.
func ParseActivityIcon(s string) (ActivityIcon, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IconLeaf, nil
	}
	icon := ActivityIcon(s)
	if icon.Label() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownIcon, s)
	}
	return icon, nil
}

// Label is the category name shown next to the icon. It returns "" for values
// outside the enum.
func (i ActivityIcon) Label() string {
	switch i {
	case IconSun:
		return "Solar energy"
	case IconShoppingBag:
		return "Sustainable shopping"
	case IconCar:
		return "Car sharing"
	case IconBus:
		return "Public transport"
	case IconBike:
		return "Cycling"
	case IconTreeDeciduous:
		return "Tree planting"
	case IconTrash:
		return "Litter pick-up"
	case IconLeaf:
		return "General eco action"
	case IconRecycle:
		return "Recycling"
	case IconSalad:
		return "Plant-based meal"
	case IconFlower:
		return "Gardening"
	default:
		return ""
	}
}

// ActivityType is a catalog entry describing a loggable action
type ActivityType struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Unit          string             `bson:"unit" json:"unit"`
	PointsPerUnit float64            `bson:"points_per_unit" json:"points_per_unit"`
	CarbonFactor  float64            `bson:"carbon_factor" json:"carbon_factor"`
	RequiresPhoto bool               `bson:"requires_photo" json:"requires_photo"`
	DailyLimit    int                `bson:"daily_limit" json:"daily_limit"`
	Icon          ActivityIcon       `bson:"icon" json:"icon"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// EffectiveDailyLimit returns DailyLimit, or DefaultDailyLimit when unset
func (t *ActivityType) EffectiveDailyLimit() int {
	if t.DailyLimit <= 0 {
		return DefaultDailyLimit
	}
	return t.DailyLimit
}

// Validate checks an activity type before it enters the catalog
func (t *ActivityType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(t.Unit) == "" {
		return errors.New("unit is required")
	}
	if !(t.PointsPerUnit > 0) || math.IsInf(t.PointsPerUnit, 0) {
		return errors.New("points_per_unit must be positive")
	}
	if !(t.CarbonFactor > 0) || math.IsInf(t.CarbonFactor, 0) {
		return errors.New("carbon_factor must be positive")
	}
	if t.DailyLimit < 0 {
		return errors.New("daily_limit must not be negative")
	}
	icon, err := ParseActivityIcon(string(t.Icon))
	if err != nil {
		return err
	}
	t.Icon = icon
	return nil
}
