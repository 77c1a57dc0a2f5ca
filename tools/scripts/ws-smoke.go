// Package main provides a CI-friendly smoke test for the gravity realtime
// notification path.
//
// It validates:
//   - admin and student login via /auth/login
//   - authenticated WebSocket handshake on /ws
//   - broadcast notification fan-out to the students room
//   - targeted admin alert fan-out ("new-complaint") to the admins room
//   - that the wrong room never receives either event
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20 // 1MiB

// envelope mirrors the server's push frame. The smoke test speaks the wire
// format directly rather than importing internal packages.
type envelope struct {
	Event   string          `json:"event"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type smokeClient struct {
	name string
	conn *websocket.Conn

	inbox chan envelope
	errCh chan error
}

func main() {
	var (
		baseURL    = flag.String("base", "http://127.0.0.1:8080", "Server base URL")
		origin     = flag.String("origin", "http://localhost", "Origin header to send (browser-like handshake)")
		adminEmail = flag.String("admin-email", "admin@example.com", "Admin login email")
		adminPass  = flag.String("admin-password", "", "Admin login password")
		studEmail  = flag.String("student-email", "student@example.com", "Student login email")
		studPass   = flag.String("student-password", "", "Student login password")
		timeout    = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -base: %v", err)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}
	if *adminPass == "" || *studPass == "" {
		fatalf("both -admin-password and -student-password are required")
	}

	root := context.Background()

	adminToken := mustLogin(root, *baseURL, *adminEmail, *adminPass, *timeout)
	studToken := mustLogin(root, *baseURL, *studEmail, *studPass, *timeout)

	wsURL := toWSURL(*baseURL) + "/ws"

	admin := mustConnect(root, "admin", wsURL, *origin, adminToken, *timeout)
	defer closeWS(admin.conn)

	student := mustConnect(root, "student", wsURL, *origin, studToken, *timeout)
	defer closeWS(student.conn)

	if *verbose {
		fmt.Printf("connected: admin + student, origin=%q\n", *origin)
	}

	title := fmt.Sprintf("smoke-%d", time.Now().UnixNano())
	mustSendNotification(root, *baseURL, adminToken, title, *timeout)

	env := student.mustReadUntilEvent(root, "new-notification", *timeout)
	var note struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Payload, &note); err != nil {
		fatalf("unmarshal notification payload: %v", err)
	}
	if note.Title != title {
		fatalf("notification title mismatch: got=%q want=%q", note.Title, title)
	}

	// Broadcasts go to the students room only.
	admin.mustAssertNoEvent("new-notification", 1200*time.Millisecond)

	mustCreateComplaint(root, *baseURL, studToken, title, *timeout)

	env = admin.mustReadUntilEvent(root, "new-complaint", *timeout)
	var complaint struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Payload, &complaint); err != nil {
		fatalf("unmarshal complaint payload: %v", err)
	}
	if complaint.Title != title {
		fatalf("complaint title mismatch: got=%q want=%q", complaint.Title, title)
	}

	// Complaint alerts go to the admins room only.
	student.mustAssertNoEvent("new-complaint", 1200*time.Millisecond)

	fmt.Printf("OK: notification=%q delivered to student, complaint alert delivered to admin\n", title)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func toWSURL(base string) string {
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://")
	}
	return "ws://" + strings.TrimPrefix(base, "http://")
}

func mustLogin(parent context.Context, base, email, password string, stepTimeout time.Duration) string {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/auth/login", bytes.NewReader(body))
	if err != nil {
		fatalf("login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("login %s: %v", email, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fatalf("login %s: status %d", email, resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("decode login response: %v", err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		fatalf("login %s: empty access_token", email)
	}
	return out.AccessToken
}

func mustSendNotification(parent context.Context, base, token, title string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{
		"title":   title,
		"message": "realtime smoke check",
		"target":  "all",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/manager/notifications", bytes.NewReader(body))
	if err != nil {
		fatalf("notification request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("send notification: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		fatalf("send notification: status %d", resp.StatusCode)
	}
}

func mustCreateComplaint(parent context.Context, base, token, title string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{
		"title":       title,
		"description": "realtime smoke check",
		"category":    "other",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/student/complaints", bytes.NewReader(body))
	if err != nil {
		fatalf("complaint request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("create complaint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		fatalf("create complaint: status %d", resp.StatusCode)
	}
}

func mustConnect(parent context.Context, name, wsURL, origin, token string, stepTimeout time.Duration) *smokeClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect %s: %v", name, err)
	}

	conn.SetReadLimit(maxReadBytes)

	c := &smokeClient{
		name:  name,
		conn:  conn,
		inbox: make(chan envelope, 512),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()
	return c
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			mt, data, err := c.conn.Read(context.Background())
			if err != nil {
				select {
				case c.errCh <- err:
				default:
				}
				return
			}

			if mt != websocket.MessageText {
				select {
				case c.errCh <- fmt.Errorf("unsupported message type: %v", mt):
				default:
				}
				return
			}

			var env envelope
			if err := json.Unmarshal(data, &env); err != nil {
				select {
				case c.errCh <- fmt.Errorf("bad json: %w", err):
				default:
				}
				return
			}

			select {
			case c.inbox <- env:
			default:
				select {
				case c.errCh <- errors.New("inbox overflow: consumer too slow"):
				default:
				}
				return
			}
		}
	}()
}

func (c *smokeClient) mustReadUntilEvent(parent context.Context, event string, stepTimeout time.Duration) envelope {
	deadline := time.NewTimer(stepTimeout)
	defer deadline.Stop()

	for {
		select {
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("%s: connection closed while waiting for %q: %v", c.name, event, c.lastErr())
			}
			if env.Event == event {
				return env
			}
			// Skip unrelated events (heartbeats do not surface here, but
			// other broadcasts may interleave).
		case <-deadline.C:
			fatalf("%s: timed out waiting for %q", c.name, event)
		case <-parent.Done():
			fatalf("%s: canceled waiting for %q", c.name, event)
		}
	}
}

func (c *smokeClient) mustAssertNoEvent(event string, window time.Duration) {
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case env, ok := <-c.inbox:
			if !ok {
				return
			}
			if env.Event == event {
				fatalf("%s: unexpectedly received %q", c.name, event)
			}
		case <-deadline.C:
			return
		}
	}
}

func (c *smokeClient) lastErr() error {
	select {
	case err := <-c.errCh:
		return err
	default:
		return nil
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "smoke done")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
