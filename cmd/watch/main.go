// Command watch is a terminal client for the tracker. It signs in, opens the
// event stream and keeps a local copy of the caller's dashboard in sync by
// refetching it whenever a relevant change signal arrives.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/timayobrian6-droid/Internship-tracker/internal/app"
	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	"github.com/timayobrian6-droid/Internship-tracker/internal/logging"
	"github.com/timayobrian6-droid/Internship-tracker/internal/notify"
	"github.com/timayobrian6-droid/Internship-tracker/internal/syncview"
)

const requestTimeout = 15 * time.Second

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "tracker server base URL")
	account := flag.String("account", "", "account id (uuid)")
	role := flag.String("role", "student", "session role: student, company or admin")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logging.InitLogger(*logLevel, "text")

	if err := run(*serverURL, *account, domain.Role(*role)); err != nil {
		slog.Error("Watch failed", "error", err)
		os.Exit(1)
	}
}

func run(server, account string, role domain.Role) error {
	accountID, err := uuid.Parse(account)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}
	base, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &watcher{
		client: &http.Client{Jar: jar, Timeout: requestTimeout},
		base:   base,
		role:   role,
	}
	w.dashboard = syncview.NewView(w.fetchDashboard)

	if err := w.createSession(ctx, accountID, role); err != nil {
		return err
	}
	if err := w.dashboard.Refresh(ctx); err != nil {
		return fmt.Errorf("initial dashboard fetch failed: %w", err)
	}
	w.report()

	conn, err := w.dialEvents(ctx, jar)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock the read loop when the process is interrupted.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	slog.Info("Watching for changes", "server", base.String(), "role", string(role))
	return w.listen(ctx, conn)
}

type watcher struct {
	client    *http.Client
	base      *url.URL
	role      domain.Role
	dashboard *syncview.View[*app.DashboardView]
}

func (w *watcher) createSession(ctx context.Context, accountID uuid.UUID, role domain.Role) error {
	body, err := json.Marshal(map[string]string{
		"user_id": accountID.String(),
		"role":    string(role),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.base.JoinPath("/auth/session").String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("session creation returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *watcher) fetchDashboard(ctx context.Context) (*app.DashboardView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.base.JoinPath("/api/dashboard").String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard returned status %d", resp.StatusCode)
	}

	var view app.DashboardView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return &view, nil
}

func (w *watcher) dialEvents(ctx context.Context, jar http.CookieJar) (*websocket.Conn, error) {
	wsURL := *w.base.JoinPath("/ws")
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}

	dialer := websocket.Dialer{Jar: jar, HandshakeTimeout: requestTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("event stream handshake returned status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	return conn, nil
}

// listen reads change events until the connection drops or ctx is cancelled.
// Events carry no data: each one only names the collection to refetch.
func (w *watcher) listen(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Shutting down")
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}

		var ev domain.ChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Warn("Dropping malformed event", "error", err)
			continue
		}

		target := notify.Route(w.role, ev, w.cachedState())
		if target == notify.TargetNone {
			slog.Debug("Ignoring event outside our view", "event", string(ev.Name))
			continue
		}

		slog.Info("Change signal received",
			"event", string(ev.Name),
			"action", ev.Action,
			"surface", string(target),
		)
		w.dashboard.OnSignal(ctx)
	}
}

// cachedState exposes the subscription set to the event router so openings
// changes from companies we don't follow are dropped client-side too.
func (w *watcher) cachedState() notify.CachedState {
	state := notify.CachedState{SubscribedCompanies: map[uuid.UUID]bool{}}
	view := w.dashboard.Get()
	if view == nil || view.Student == nil {
		return state
	}
	for _, sub := range view.Student.Subscriptions {
		state.SubscribedCompanies[sub.CompanyID] = true
	}
	return state
}

func (w *watcher) report() {
	view := w.dashboard.Get()
	if view == nil {
		return
	}
	switch {
	case view.Student != nil:
		slog.Info("Dashboard loaded",
			"subscriptions", len(view.Student.Subscriptions),
			"openings", len(view.Student.Openings),
			"applications", len(view.Student.Applications),
			"pending_clarifications", len(view.Student.PendingClarifications),
		)
	case view.Company != nil:
		slog.Info("Dashboard loaded",
			"openings", len(view.Company.Openings),
			"applications", len(view.Company.Applications),
		)
	case view.Admin != nil:
		slog.Info("Dashboard loaded",
			"openings", len(view.Admin.Openings),
			"applications", len(view.Admin.Applications),
			"audit_entries", len(view.Admin.AuditEntries),
		)
	}
}
