package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zalar/inventar/internal/auth"
	"github.com/zalar/inventar/internal/db"
	"github.com/zalar/inventar/internal/model"
	"github.com/zalar/inventar/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unknown users get the same answer as bad passwords.
	body, _ = json.Marshal(map[string]string{"username": "nobody", "password": "whatever"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create a regular user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	user, err := store.CreateUser(ctx, database, "user1", string(hash), model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	userToken, _ := auth.GenerateToken(testJWTSecret, user.ID, user.Username, user.Role)

	// Regular user should not be able to create items (manager+ required).
	req, _ := authRequest("POST", server.URL+"/api/items", userToken, map[string]any{
		"name": "Test", "category": model.CategoryTool, "quantity": 1,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user creating item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Regular user should not access /api/users.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Clearing the movement log is admin only.
	req, _ = authRequest("DELETE", server.URL+"/api/movements", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user clearing movements, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Reading items is fine for every role.
	req, _ = authRequest("GET", server.URL+"/api/items", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for user listing items, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCheckoutCheckinAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create item.
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":     "Cordless drill",
		"category": model.CategoryTool,
		"quantity": 5,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()

	// Check out two units.
	req, _ = authRequest("POST", server.URL+"/api/movements/checkout", token, map[string]any{
		"item_id":         item.ID,
		"quantity":        2,
		"handled_by":      "Janez",
		"expected_return": time.Now().Add(48 * time.Hour),
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for checkout, got %d", resp.StatusCode)
	}
	var movement model.Movement
	json.NewDecoder(resp.Body).Decode(&movement)
	resp.Body.Close()
	if movement.Status != model.MovementOnLoan {
		t.Errorf("expected on_loan, got %s", movement.Status)
	}

	// Stock went down.
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var got model.Item
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Quantity != 3 {
		t.Errorf("expected quantity 3 after checkout, got %d", got.Quantity)
	}

	// Checking out more than available is rejected.
	req, _ = authRequest("POST", server.URL+"/api/movements/checkout", token, map[string]any{
		"item_id":         item.ID,
		"quantity":        10,
		"expected_return": time.Now().Add(48 * time.Hour),
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for insufficient stock, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Return the loan.
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/movements/%d/checkin", server.URL, movement.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for checkin, got %d", resp.StatusCode)
	}
	var returned model.Movement
	json.NewDecoder(resp.Body).Decode(&returned)
	resp.Body.Close()
	if returned.Status != model.MovementReturned {
		t.Errorf("expected returned, got %s", returned.Status)
	}

	// Stock is restored.
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Quantity != 5 {
		t.Errorf("expected quantity 5 after checkin, got %d", got.Quantity)
	}

	// A second checkin of the same movement is a conflict.
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/movements/%d/checkin", server.URL, movement.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double checkin, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemHistoryEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":     "Screws 4x40",
		"category": model.CategoryConsumable,
		"quantity": 100,
	})
	resp, _ := http.DefaultClient.Do(req)
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/movements/checkout", token, map[string]any{
		"item_id":  item.ID,
		"quantity": 20,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for consumable checkout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// History holds the initial stocking plus the checkout, newest first.
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d/history", server.URL, item.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", resp.StatusCode)
	}
	var history []model.Movement
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()
	if len(history) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(history))
	}
	if history[0].Type != model.MovementOut || history[0].Status != model.MovementConsumed {
		t.Errorf("expected consumed out movement first, got %s/%s", history[0].Type, history[0].Status)
	}
}

func TestInvitationRegisterFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Admin creates an invitation for a manager.
	req, _ := authRequest("POST", server.URL+"/api/invitations", token, map[string]string{
		"email": "miha@example.com",
		"role":  model.RoleManager,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for invitation, got %d", resp.StatusCode)
	}
	var invitation model.Invitation
	json.NewDecoder(resp.Body).Decode(&invitation)
	resp.Body.Close()
	if invitation.Token == "" {
		t.Fatal("expected invitation token")
	}

	// Registration is public, gated by the token.
	body, _ := json.Marshal(map[string]string{
		"token":    invitation.Token,
		"username": "miha",
		"password": "correcthorse",
	})
	resp, _ = http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for registration, got %d", resp.StatusCode)
	}
	var user model.User
	json.NewDecoder(resp.Body).Decode(&user)
	resp.Body.Close()
	if user.Role != model.RoleManager {
		t.Errorf("expected invited role manager, got %s", user.Role)
	}

	// The new account can log in.
	body, _ = json.Marshal(map[string]string{"username": "miha", "password": "correcthorse"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for new user login, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Tokens are single use.
	body, _ = json.Marshal(map[string]string{
		"token":    invitation.Token,
		"username": "miha2",
		"password": "correcthorse",
	})
	resp, _ = http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for reused token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReportsSummaryEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":     "Hammer",
		"category": model.CategoryTool,
		"quantity": 2,
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/reports/summary", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for summary, got %d", resp.StatusCode)
	}
	var summary model.Summary
	json.NewDecoder(resp.Body).Decode(&summary)
	resp.Body.Close()
	if summary.TotalItems != 1 {
		t.Errorf("expected 1 item, got %d", summary.TotalItems)
	}
	if summary.Movements != 1 {
		t.Errorf("expected 1 movement (initial stocking), got %d", summary.Movements)
	}
}

func TestExportMovementsCSV(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":     "Ladder",
		"category": model.CategoryTool,
		"quantity": 1,
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/reports/movements.csv", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for export, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,date,type,item") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Ladder") {
		t.Errorf("expected Ladder in export, got %q", lines[1])
	}
}
