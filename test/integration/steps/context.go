// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/streamshare/backend/config"
	"github.com/streamshare/backend/internal/infra/dependency"
	"github.com/streamshare/backend/test/integration/mock"
)

const (
	testJWTSecret     = "test-jwt-secret-key-for-testing-purposes"
	testPassword      = "correct-horse-battery"
	testAdminPassword = "admin-pass-123"
)

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string
	accessToken    string

	// Infrastructure
	cfg      *config.Config
	db       *mock.Db
	redis    *mock.Redis
	resend   *mock.ResendApi
	injector *dependency.Injector

	// Domain state
	subscribers map[string]subscriber
	adminEmail  string
	tokens      map[string]string
	groupID     uuid.UUID
	respondedAt map[string]string
}

type subscriber struct {
	id    uuid.UUID
	email string
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario wires a fresh application per scenario and registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc, err := newTestContext()
		if err != nil {
			return ctx, err
		}
		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc := GetTestContext(ctx); tc != nil {
			tc.close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerMutualSteps(ctx)
}

func newTestContext() (*TestContext, error) {
	db, err := mock.NewDb()
	if err != nil {
		return nil, err
	}
	redis, err := mock.NewRedis()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	resend := mock.NewResendApi()

	tc := &TestContext{
		requestHeaders: make(map[string]string),
		cfg:            testConfig(resend.GetUrl()),
		db:             db,
		redis:          redis,
		resend:         resend,
		subscribers:    make(map[string]subscriber),
		tokens:         make(map[string]string),
		respondedAt:    make(map[string]string),
	}

	tc.injector, err = dependency.NewInjector(tc.cfg, db.DbConn, redis.Client)
	if err != nil {
		tc.close()
		return nil, err
	}
	tc.server = httptest.NewServer(tc.injector.Router.Setup(tc.cfg.Server.Environment))
	return tc, nil
}

func (tc *TestContext) close() {
	if tc.server != nil {
		tc.server.Close()
	}
	tc.resend.Close()
	tc.redis.Close()
	_ = tc.db.Close()
}

// testConfig is independent of the environment so local settings never leak into scenarios.
func testConfig(resendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment: "test",
			// logins are frequent in scenarios; the limiter has its own unit tests
			LoginMaxAttempts: 0,
		},
		JWT: config.JWTConfig{
			Secret:            testJWTSecret,
			AccessTokenExpiry: time.Hour,
			BcryptCost:        4,
		},
		Email: config.EmailConfig{
			ResendAPIKey:  "re_test_key",
			ResendBaseURL: resendURL,
			FromName:      "StreamShare",
			FromEmail:     "mutual@streamshare.test",
			AppBaseURL:    "http://dashboard.streamshare.test",
			PollInterval:  time.Second,
			BatchSize:     50,
		},
		Mutual: config.MutualConfig{
			MinMembers:             2,
			NotificationCacheTTL:   30 * time.Second,
			LowUsageDefaultMinutes: 60,
		},
	}
}

// call sends a request without touching the scenario's last response.
func (tc *TestContext) call(method, endpoint, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			payload, err := json.Marshal(b)
			if err != nil {
				return 0, nil, err
			}
			reader = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequest(method, tc.server.URL+endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// send performs a request and records it as the scenario's last response.
func (tc *TestContext) send(method, endpoint string, body any) error {
	status, data, err := tc.call(method, endpoint, tc.accessToken, body)
	if err != nil {
		return err
	}
	tc.response = &http.Response{StatusCode: status}
	tc.responseBody = data
	return nil
}

// callJSON performs a request that must succeed and decodes its body into out.
func (tc *TestContext) callJSON(method, endpoint, token string, body, out any) error {
	status, data, err := tc.call(method, endpoint, token, body)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("%s %s returned %d: %s", method, endpoint, status, string(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
	ctx.Step(`^I set header "([^"]*)" to "([^"]*)"$`, iSetHeaderTo)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
}

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	return nil
}

func iSendARequestTo(ctx context.Context, method, endpoint string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(method, endpoint, nil)
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(method, endpoint, body.Content)
}

func iSetHeaderTo(ctx context.Context, header, value string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.requestHeaders[header] = value
	return nil
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), expected) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var data map[string]any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return fmt.Errorf("field '%s' not found in response: %s", field, string(tc.responseBody))
	}

	actual := fmt.Sprintf("%v", value)
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var data map[string]any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if _, ok := data[field]; !ok {
		return fmt.Errorf("field '%s' not found in response", field)
	}
	return nil
}
