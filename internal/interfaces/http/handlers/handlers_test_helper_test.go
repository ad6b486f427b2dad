package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/infrastructure/datasources/postgres"
	gormrepo "blood-donate.backend/internal/infrastructure/repositories"
	"blood-donate.backend/internal/interfaces/http/middleware"
	"blood-donate.backend/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	donorToken = "donor-token"
	otherToken = "other-token"
	adminToken = "admin-token"
)

type tokenVerifier map[string]*entities.Identity

func (v tokenVerifier) VerifyIDToken(_ context.Context, token string) (*entities.Identity, error) {
	if identity, ok := v[token]; ok {
		return identity, nil
	}
	return nil, domainerrors.Unauthorized("invalid token")
}

type stubGateway struct {
	mu           sync.Mutex
	sessions     map[string]*entities.PaymentSession
	lastCheckout entities.CheckoutRequest
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastCheckout = req
	return &entities.CheckoutSession{URL: "https://checkout.test/cs_new", SessionID: "cs_new"}, nil
}

func (g *stubGateway) GetCheckoutSession(_ context.Context, id string) (*entities.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return nil, domainerrors.NotFound("checkout session not found")
	}
	return s, nil
}

// ParseWebhook accepts the signature "valid" and a {"type","id"} body.
func (g *stubGateway) ParseWebhook(payload []byte, signature string) (*entities.PaymentSession, bool, error) {
	if signature != "valid" {
		return nil, false, domainerrors.BadRequest("invalid webhook signature")
	}
	var event struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, false, domainerrors.BadRequest("invalid payload")
	}
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
	default:
		return nil, false, nil
	}
	return &entities.PaymentSession{ID: event.ID}, true, nil
}

func (g *stubGateway) addSession(s *entities.PaymentSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.ID] = s
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	users    *gormrepo.UserRepository
	gateway  *stubGateway
	verifier tokenVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	userRepo := gormrepo.NewUserRepository(db)
	requestRepo := gormrepo.NewDonationRequestRepository(db)
	fundingRepo := gormrepo.NewFundingRepository(db)
	uow := gormrepo.NewUnitOfWork(db)
	gateway := &stubGateway{sessions: map[string]*entities.PaymentSession{}}

	userUC := usecases.NewUserUsecase(userRepo, uow)
	requestUC := usecases.NewDonationRequestUsecase(requestRepo, userRepo)
	fundingUC := usecases.NewFundingUsecase(fundingRepo, userRepo, gateway, usecases.FundingSettings{SiteDomain: "https://blood.test/"})
	adminUC := usecases.NewAdminUsecase(userRepo, requestRepo, fundingRepo)

	verifier := tokenVerifier{
		donorToken: {UID: "u1", Email: "Donor@Example.com", Name: "Donor One"},
		otherToken: {UID: "u2", Email: "other@example.com", Name: "Other Donor"},
		adminToken: {UID: "u3", Email: "admin@example.com", Name: "Admin"},
	}

	userH := NewUserHandler(userUC)
	requestH := NewDonationRequestHandler(requestUC)
	fundingH := NewFundingHandler(fundingUC)
	webhookH := NewWebhookHandler(gateway, fundingUC)
	adminH := NewAdminHandler(userUC, requestUC, adminUC)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/requests/public", requestH.ListPublic)
	v1.GET("/requests/search", requestH.Search)
	v1.POST("/webhooks/stripe", webhookH.HandleStripe)

	auth := v1.Group("", middleware.AuthMiddleware(verifier))
	auth.POST("/users", userH.Register)
	auth.GET("/users/me", userH.GetMe)
	auth.PUT("/users/me", userH.UpdateMe)
	auth.GET("/users/role/:email", userH.GetRole)
	auth.POST("/requests", requestH.Create)
	auth.GET("/requests/mine", requestH.ListMine)
	auth.GET("/requests/:id", requestH.Get)
	auth.PUT("/requests/:id", requestH.Update)
	auth.DELETE("/requests/:id", requestH.Delete)
	auth.PATCH("/requests/:id/status", requestH.UpdateStatus)
	auth.PATCH("/requests/:id/claim", requestH.Claim)
	auth.POST("/fundings/checkout", fundingH.CreateCheckout)
	auth.POST("/fundings/confirm", fundingH.Confirm)
	auth.GET("/fundings", fundingH.List)

	admin := auth.Group("/admin")
	admin.GET("/users", middleware.RequireAdmin(userUC), adminH.ListUsers)
	admin.PATCH("/users/role", middleware.RequireAdmin(userUC), adminH.UpdateRole)
	admin.PATCH("/users/status", middleware.RequireAdmin(userUC), adminH.UpdateStatus)
	admin.GET("/requests", middleware.RequireAdminOrVolunteer(userUC), adminH.ListRequests)
	admin.GET("/stats", middleware.RequireAdminOrVolunteer(userUC), adminH.Stats)

	return &testEnv{router: r, db: db, users: userRepo, gateway: gateway, verifier: verifier}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// promote registers the token's user and sets its role directly in the store.
func (e *testEnv) promote(t *testing.T, token string, role entities.UserRole) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/users", token, nil)
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
	email := strings.ToLower(e.verifier[token].Email)
	_, err := e.users.UpdateRole(context.Background(), email, role)
	require.NoError(t, err)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func validRequestBody() map[string]string {
	return map[string]string{
		"recipientName":     "Rahim",
		"recipientDistrict": "Dhaka",
		"recipientUpazila":  "Savar",
		"hospitalName":      "Enam Medical",
		"bloodGroup":        "o-",
		"donationDate":      "2026-11-01",
		"donationTime":      "10:30",
		"requestMessage":    "urgent",
	}
}

func createRequest(t *testing.T, e *testEnv, token string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/requests", token, validRequestBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, id)
	return id
}
