package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore backs every fake repository. WithTransaction serialises callers and
// restores a snapshot when fn fails, like an aborted MongoDB transaction.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users       map[primitive.ObjectID]models.User
	profiles    map[primitive.ObjectID]models.Profile
	types       map[primitive.ObjectID]models.ActivityType
	activities  map[primitive.ObjectID]models.Activity
	vouchers    map[primitive.ObjectID]models.Voucher
	redemptions map[primitive.ObjectID]models.Redemption
	ledger      []models.PointTransaction
	revoked     map[string]time.Time

	usedCodes      map[string]bool
	transactions   int
	failCountQuery error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[primitive.ObjectID]models.User{},
		profiles:    map[primitive.ObjectID]models.Profile{},
		types:       map[primitive.ObjectID]models.ActivityType{},
		activities:  map[primitive.ObjectID]models.Activity{},
		vouchers:    map[primitive.ObjectID]models.Voucher{},
		redemptions: map[primitive.ObjectID]models.Redemption{},
		revoked:     map[string]time.Time{},
		usedCodes:   map[string]bool{},
	}
}

type snapshot struct {
	profiles    map[primitive.ObjectID]models.Profile
	activities  map[primitive.ObjectID]models.Activity
	vouchers    map[primitive.ObjectID]models.Voucher
	redemptions map[primitive.ObjectID]models.Redemption
	ledger      []models.PointTransaction
	usedCodes   map[string]bool
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.transactions++
	snap := snapshot{
		profiles:    copyMap(s.profiles),
		activities:  copyMap(s.activities),
		vouchers:    copyMap(s.vouchers),
		redemptions: copyMap(s.redemptions),
		ledger:      append([]models.PointTransaction(nil), s.ledger...),
		usedCodes:   copyMap(s.usedCodes),
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.profiles, s.activities, s.vouchers = snap.profiles, snap.activities, snap.vouchers
		s.redemptions, s.ledger, s.usedCodes = snap.redemptions, snap.ledger, snap.usedCodes
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repositories.Transactor = (*memStore)(nil)

// --- users ---

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r fakeUserRepo) FindByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, repositories.ErrNotFound
	}
	return r.find(func(u models.User) bool { return u.ConfirmationToken == token })
}

func (r fakeUserRepo) MarkEmailConfirmed(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.EmailConfirmed = true
	u.ConfirmationToken = ""
	r.s.users[id] = u
	return nil
}

func (r fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// --- profiles ---

type fakeProfileRepo struct{ s *memStore }

func (r fakeProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[profile.ID]
	if !ok {
		p = models.Profile{ID: profile.ID, CreatedAt: time.Now()}
	}
	p.FullName = profile.FullName
	r.s.profiles[profile.ID] = p
	return nil
}

func (r fakeProfileRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r fakeProfileRepo) CreditImpact(ctx context.Context, id primitive.ObjectID, points int64, carbonKg float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.TotalPoints += points
	p.CarbonSavedKg += carbonKg
	r.s.profiles[id] = p
	return nil
}

func (r fakeProfileRepo) DeductPoints(ctx context.Context, id primitive.ObjectID, points int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || p.TotalPoints < points {
		return repositories.ErrInsufficientPoints
	}
	p.TotalPoints -= points
	r.s.profiles[id] = p
	return nil
}

// --- activity types ---

type fakeTypeRepo struct{ s *memStore }

func (r fakeTypeRepo) Create(ctx context.Context, t *models.ActivityType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = primitive.NewObjectID()
	r.s.types[t.ID] = *t
	return nil
}

func (r fakeTypeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ActivityType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.types[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r fakeTypeRepo) FindAll(ctx context.Context) ([]*models.ActivityType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.ActivityType{}
	for _, t := range r.s.types {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeTypeRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.ActivityType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.ActivityType{}
	for _, id := range ids {
		if t, ok := r.s.types[id]; ok {
			out = append(out, &t)
		}
	}
	return out, nil
}

// --- activities ---

type fakeActivityRepo struct{ s *memStore }

func (r fakeActivityRepo) Create(ctx context.Context, a *models.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = primitive.NewObjectID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.s.activities[a.ID] = *a
	return nil
}

func (r fakeActivityRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r fakeActivityRepo) CountByUserAndTypeSince(ctx context.Context, userID, typeID primitive.ObjectID, since time.Time) (int64, error) {
	if r.s.failCountQuery != nil {
		return 0, r.s.failCountQuery
	}
	return int64(len(r.filter(func(a models.Activity) bool {
		return a.UserID == userID && a.ActivityTypeID == typeID && !a.CreatedAt.Before(since)
	}))), nil
}

func (r fakeActivityRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return int64(len(r.filter(func(a models.Activity) bool { return a.UserID == userID }))), nil
}

func (r fakeActivityRepo) FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Activity, error) {
	out := r.filter(func(a models.Activity) bool { return a.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeActivityRepo) FindByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]*models.Activity, error) {
	out := r.filter(func(a models.Activity) bool { return a.UserID == userID && !a.CreatedAt.Before(since) })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeActivityRepo) FindByStatus(ctx context.Context, status models.ActivityStatus, limit int64) ([]*models.Activity, error) {
	out := r.filter(func(a models.Activity) bool { return a.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeActivityRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.ActivityStatus, update *models.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if a.Status != from {
		return repositories.ErrStatusConflict
	}
	a.Status = update.Status
	a.ReviewedBy = update.ReviewedBy
	a.ReviewedAt = update.ReviewedAt
	a.RejectionReason = update.RejectionReason
	r.s.activities[id] = a
	return nil
}

func (r fakeActivityRepo) filter(match func(models.Activity) bool) []*models.Activity {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Activity{}
	for _, a := range r.s.activities {
		if match(a) {
			a := a
			out = append(out, &a)
		}
	}
	return out
}

// --- vouchers ---

type fakeVoucherRepo struct{ s *memStore }

func (r fakeVoucherRepo) Create(ctx context.Context, v *models.Voucher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.ID = primitive.NewObjectID()
	r.s.vouchers[v.ID] = *v
	return nil
}

func (r fakeVoucherRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (r fakeVoucherRepo) FindAvailable(ctx context.Context, now time.Time) ([]*models.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Voucher{}
	for _, v := range r.s.vouchers {
		if v.Available(now) {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointsRequired < out[j].PointsRequired })
	return out, nil
}

func (r fakeVoucherRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Voucher{}
	for _, id := range ids {
		if v, ok := r.s.vouchers[id]; ok {
			out = append(out, &v)
		}
	}
	return out, nil
}

func (r fakeVoucherRepo) DecrementRemaining(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[id]
	if !ok || !v.Available(now) {
		return repositories.ErrVoucherUnavailable
	}
	v.Remaining--
	r.s.vouchers[id] = v
	return nil
}

func (r fakeVoucherRepo) DeactivateExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, v := range r.s.vouchers {
		if v.IsActive && v.Expired(now) {
			v.IsActive = false
			r.s.vouchers[id] = v
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// --- redemptions ---

type fakeRedemptionRepo struct{ s *memStore }

func (r fakeRedemptionRepo) Create(ctx context.Context, red *models.Redemption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usedCodes[red.RedemptionCode] {
		return repositories.ErrDuplicate
	}
	red.ID = primitive.NewObjectID()
	r.s.usedCodes[red.RedemptionCode] = true
	r.s.redemptions[red.ID] = *red
	return nil
}

func (r fakeRedemptionRepo) FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Redemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Redemption{}
	for _, red := range r.s.redemptions {
		if red.UserID == userID {
			red := red
			out = append(out, &red)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RedeemedAt.After(out[j].RedeemedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeRedemptionRepo) ExpirePending(ctx context.Context, voucherIDs []primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make(map[primitive.ObjectID]bool)
	for _, id := range voucherIDs {
		ids[id] = true
	}
	var n int64
	for id, red := range r.s.redemptions {
		if ids[red.VoucherID] && red.Status == models.RedemptionStatusPending {
			red.Status = models.RedemptionStatusExpired
			r.s.redemptions[id] = red
			n++
		}
	}
	return n, nil
}

// --- ledger ---

type fakeLedgerRepo struct{ s *memStore }

func (r fakeLedgerRepo) Create(ctx context.Context, t *models.PointTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = primitive.NewObjectID()
	r.s.ledger = append(r.s.ledger, *t)
	return nil
}

func (r fakeLedgerRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.PointTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.PointTransaction{}
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			t := r.s.ledger[i]
			out = append(out, &t)
		}
	}
	return out, nil
}

// --- revoked tokens ---

type fakeRevokedRepo struct{ s *memStore }

func (r fakeRevokedRepo) Revoke(ctx context.Context, t *models.RevokedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revoked[t.ID] = t.ExpiresAt
	return nil
}

func (r fakeRevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.revoked[jti]
	return ok, nil
}

// --- collaborators ---

type fakeStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	err     error
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = body
	return "https://cdn.test/" + key, nil
}

type fakeGeocoder struct {
	address string
	err     error
	calls   int
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	f.calls++
	return f.address, f.err
}

var errBoom = errors.New("boom")

func newTokenService() *jwt.TokenService {
	return jwt.NewTokenService("test-secret", "carbonova", time.Hour)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
