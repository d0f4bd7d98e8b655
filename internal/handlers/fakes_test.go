package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carbonova/carbonova-backend/internal/middleware"
	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testUserID = primitive.NewObjectID()

// asUser stands in for JWTAuthMiddleware
func asUser(id primitive.ObjectID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUserRole, role)
		c.Set(middleware.ContextTokenID, "jti-1")
		c.Set(middleware.ContextTokenExpiry, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
		c.Next()
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, proof []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if proof != nil {
		fw, err := mw.CreateFormFile("proof", "receipt.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(proof); err != nil {
			t.Fatalf("write proof: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

type fakeAuthService struct {
	signUpErr    error
	signInErr    error
	signedOut    []string
	confirmToken string
}

func (f *fakeAuthService) SignUp(_ context.Context, req *models.SignUpRequest) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.User{ID: primitive.NewObjectID(), Email: req.Email, Role: models.RoleUser, EmailConfirmed: true}, nil
}

func (f *fakeAuthService) SignIn(_ context.Context, req *models.SignInRequest) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &models.Session{AccessToken: "token", TokenType: "Bearer", User: &models.User{Email: req.Email}}, nil
}

func (f *fakeAuthService) SignOut(_ context.Context, tokenID string, _ time.Time) error {
	f.signedOut = append(f.signedOut, tokenID)
	return nil
}

func (f *fakeAuthService) CurrentUser(_ context.Context, userID primitive.ObjectID) (*models.CurrentUser, error) {
	return &models.CurrentUser{
		User:    &models.User{ID: userID, Email: "ada@example.com"},
		Profile: &models.Profile{ID: userID, FullName: "Ada", TotalPoints: 42},
	}, nil
}

func (f *fakeAuthService) ConfirmEmail(_ context.Context, token string) error {
	f.confirmToken = token
	return nil
}

func (f *fakeAuthService) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}

type fakeActivityService struct {
	lastSub    *models.ActivitySubmission
	lastUserID primitive.ObjectID
	submitErr  error
	geocodeErr error
}

func (f *fakeActivityService) ListActivityTypes(context.Context) ([]*models.ActivityType, error) {
	return []*models.ActivityType{{ID: primitive.NewObjectID(), Name: "Cycling", Unit: "km", Icon: models.IconBike}}, nil
}

func (f *fakeActivityService) Preview(_ context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.SubmissionPreview, error) {
	f.lastUserID, f.lastSub = userID, sub
	return &models.SubmissionPreview{PointsEarned: 10, DailyLimit: 3, Allowed: true, Blocks: []models.SubmissionBlock{}}, nil
}

func (f *fakeActivityService) Submit(_ context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.Activity, error) {
	f.lastUserID, f.lastSub = userID, sub
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.Activity{ID: primitive.NewObjectID(), UserID: userID, PointsEarned: 25, Status: models.ActivityStatusPending}, nil
}

func (f *fakeActivityService) ReverseGeocode(_ context.Context, lat, lon float64) (string, error) {
	if f.geocodeErr != nil {
		return "", f.geocodeErr
	}
	return "Main Street", nil
}

type fakeDashboardService struct {
	timezone string
}

func (f *fakeDashboardService) Summary(_ context.Context, _ primitive.ObjectID, timezone string) (*models.DashboardSummary, error) {
	f.timezone = timezone
	return &models.DashboardSummary{FullName: "Ada", TotalPoints: 120, TreesEquivalent: 2}, nil
}

type fakeRewardService struct {
	redeemErr   error
	redeemedFor primitive.ObjectID
}

func (f *fakeRewardService) ListVouchers(context.Context, primitive.ObjectID) (*models.VoucherCatalog, error) {
	return &models.VoucherCatalog{UserPoints: 100, Vouchers: []*models.VoucherOffer{}}, nil
}

func (f *fakeRewardService) Redeem(_ context.Context, _ primitive.ObjectID, voucherID primitive.ObjectID) (*models.RedemptionReceipt, error) {
	f.redeemedFor = voucherID
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	return &models.RedemptionReceipt{
		Redemption:       &models.Redemption{ID: primitive.NewObjectID(), VoucherID: voucherID, RedemptionCode: "ECO-ABCD1234"},
		RemainingBalance: 50,
	}, nil
}

func (f *fakeRewardService) History(context.Context, primitive.ObjectID) ([]*models.RedemptionWithVoucher, error) {
	return []*models.RedemptionWithVoucher{}, nil
}

func (f *fakeRewardService) PointHistory(context.Context, primitive.ObjectID) ([]*models.PointTransaction, error) {
	return []*models.PointTransaction{{Delta: 25, Reason: models.PointReasonActivityApproved}}, nil
}

type fakeReviewService struct {
	listStatus   models.ActivityStatus
	listLimit    int64
	rejectReason string
	approveErr   error
}

func (f *fakeReviewService) List(_ context.Context, status models.ActivityStatus, limit int64) ([]*models.ActivityWithType, error) {
	f.listStatus, f.listLimit = status, limit
	return []*models.ActivityWithType{}, nil
}

func (f *fakeReviewService) Approve(_ context.Context, reviewerID, activityID primitive.ObjectID) (*models.Activity, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return &models.Activity{ID: activityID, Status: models.ActivityStatusApproved, ReviewedBy: reviewerID}, nil
}

func (f *fakeReviewService) Reject(_ context.Context, reviewerID, activityID primitive.ObjectID, reason string) (*models.Activity, error) {
	f.rejectReason = reason
	return &models.Activity{ID: activityID, Status: models.ActivityStatusRejected, RejectionReason: reason}, nil
}

type fakeCatalogService struct {
	activityType *models.ActivityType
	voucher      *models.Voucher
}

func (f *fakeCatalogService) CreateActivityType(_ context.Context, t *models.ActivityType) (*models.ActivityType, error) {
	f.activityType = t
	t.ID = primitive.NewObjectID()
	return t, nil
}

func (f *fakeCatalogService) CreateVoucher(_ context.Context, v *models.Voucher) (*models.Voucher, error) {
	f.voucher = v
	v.ID = primitive.NewObjectID()
	return v, nil
}
