package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/TahaTehitah1/strimo-plan-util/internal/config"
	"github.com/TahaTehitah1/strimo-plan-util/internal/credentials"
	"github.com/TahaTehitah1/strimo-plan-util/internal/models"
	"github.com/TahaTehitah1/strimo-plan-util/internal/portal"
)

// Streaming URL templates of the provider's Xtream-style server. Generated
// credentials are plain ASCII letters and digits, safe to interpolate as-is.
const (
	m3uTemplate = "%s/get.php?username=%s&password=%s&type=m3u_plus&output=ts"
	epgTemplate = "%s/xmltv.php?username=%s&password=%s"
)

// Driver acquires exclusive portal sessions. *portal.Driver implements it;
// tests substitute a scripted fake.
type Driver interface {
	NewSession(ctx context.Context) (portal.Session, error)
}

// PurchaseService runs one plan purchase per call: one browser session,
// conditional reseller login, order form fill, submit, result assembly.
type PurchaseService struct {
	cfg    *config.Config
	driver Driver
	slots  *semaphore.Weighted
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(cfg *config.Config, driver Driver) *PurchaseService {
	maxSessions := cfg.Browser.MaxSessions
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &PurchaseService{
		cfg:    cfg,
		driver: driver,
		slots:  semaphore.NewWeighted(int64(maxSessions)),
	}
}

// PurchasePlan drives the provider portal through one purchase attempt.
// It never returns an error: every failure, including panics out of the
// browser layer, comes back as a result with success=false, and the browser
// session is released on every path.
func (s *PurchaseService) PurchasePlan(ctx context.Context, req *models.PurchaseRequest) (result *models.PurchaseResult) {
	requestID := uuid.New().String()
	orderType := models.ParseOrderType(req.OrderType)

	log.Printf("[Purchase] %s: starting %s order, plan=%s, freeTrial=%v",
		requestID, orderType, req.PlanID, req.IsFreeTrial)

	defer func() {
		if r := recover(); r != nil {
			result = failure(requestID, fmt.Errorf("%v", r))
		}
	}()

	// Cap on simultaneous browser processes. The request context matters
	// only until a session exists; after that the flow runs to completion.
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return failure(requestID, &models.AutomationError{Step: "acquire session slot", Err: err})
	}
	defer s.slots.Release(1)

	sess, err := s.driver.NewSession(ctx)
	if err != nil {
		return failure(requestID, &models.AutomationError{Step: "launch browser session", Err: err})
	}
	defer sess.Close()

	base := s.cfg.Provider.BaseURL
	if base == "" {
		return failure(requestID, &models.ConfigurationError{Message: "IPTV_PROVIDER_URL is not configured"})
	}

	formURL := portal.FormURL(base, orderType == models.OrderTypeMAG)
	if err := sess.Navigate(formURL); err != nil {
		return failure(requestID, &models.AutomationError{Step: "open order form", Err: err})
	}

	// Two-state check, decided once per order: either the portal bounced us
	// to its login page or the session is already authenticated.
	if sess.RequiresLogin() {
		user, pass := s.cfg.Provider.Username, s.cfg.Provider.Password
		if user == "" || pass == "" {
			return failure(requestID, &models.ConfigurationError{
				Message: "provider login required but IPTV_PROVIDER_USERNAME/IPTV_PROVIDER_PASSWORD are not configured",
			})
		}
		log.Printf("[Purchase] %s: portal requires login", requestID)
		if err := sess.Login(user, pass); err != nil {
			return failure(requestID, &models.AutomationError{Step: "log in to portal", Err: err})
		}
	}

	if err := sess.SelectPackage(req.PlanID); err != nil {
		return failure(requestID, &models.AutomationError{Step: "select package", Err: err})
	}

	var username, password string
	switch orderType {
	case models.OrderTypeMAG:
		if req.MACAddress == "" {
			return failure(requestID, &models.ValidationError{Message: "macAddress is required for MAG_DEVICE orders"})
		}
		if err := sess.FillMAC(req.MACAddress); err != nil {
			return failure(requestID, &models.AutomationError{Step: "fill mac address", Err: err})
		}
		username, password = req.MACAddress, ""
	default:
		username, err = credentials.DeriveUsername(req.Email)
		if err != nil {
			return failure(requestID, &models.ValidationError{Message: err.Error()})
		}
		password = credentials.GeneratePassword(credentials.PasswordLength)
		if err := sess.FillAccount(username, password); err != nil {
			return failure(requestID, &models.AutomationError{Step: "fill account fields", Err: err})
		}
	}

	if err := sess.Submit(); err != nil {
		return failure(requestID, &models.AutomationError{Step: "submit order", Err: err})
	}

	log.Printf("[Purchase] %s: order placed", requestID)

	return &models.PurchaseResult{
		RequestID: requestID,
		Username:  username,
		Password:  password,
		Success:   true,
		Access:    s.access(orderType, username, password, req.MACAddress),
	}
}

// access assembles the order-type delivery payload from configuration.
func (s *PurchaseService) access(orderType models.OrderType, username, password, mac string) models.Access {
	if orderType == models.OrderTypeMAG {
		return &models.MAGAccess{
			MACAddress: mac,
			PortalURL:  s.cfg.Streaming.MAGPortalURL,
		}
	}

	server := strings.TrimRight(s.cfg.Streaming.ServerURL, "/")
	return &models.StandardAccess{
		ServerURL:     server,
		BackupServers: s.cfg.Streaming.BackupServers,
		M3UURL:        fmt.Sprintf(m3uTemplate, server, username, password),
		EPGURL:        fmt.Sprintf(epgTemplate, server, username, password),
	}
}

// failure renders err as the terminal result shape: empty credentials,
// success=false, the captured message or the unknown-error fallback.
func failure(requestID string, err error) *models.PurchaseResult {
	kind := models.Classify(err)
	msg := models.ErrorMessage(err)
	log.Printf("[Purchase] %s: failed (%s): %s", requestID, kind, msg)
	return &models.PurchaseResult{
		RequestID: requestID,
		Success:   false,
		Error:     msg,
		Kind:      kind,
	}
}
