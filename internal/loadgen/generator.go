package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	countries = []string{"India", "USA", "UK", "Canada", "Australia", "Germany", "France", "Japan"}
	pages     = []string{"/", "/products", "/about", "/contact", "/blog", "/pricing"}
	devices   = []string{"mobile", "desktop", "tablet"}
	referrers = []string{"google.com", "facebook.com", "twitter.com", "linkedin.com", "direct"}
)

// sessionPoolSize bounds how many concurrent simulated visitors exist.
const sessionPoolSize = 8

// Config controls the traffic simulator.
type Config struct {
	BaseURL  string
	MinDelay time.Duration
	MaxDelay time.Duration
	Count    int // 0 = run until the context is cancelled
}

// Generator sends a stream of synthetic visitor events to a running
// server, mimicking a small population of browsing sessions.
type Generator struct {
	cfg    Config
	client *http.Client
	rng    *rand.Rand

	sessions []string
	sent     int
}

func NewGenerator(cfg Config) *Generator {
	g := &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i := 0; i < sessionPoolSize; i++ {
		g.sessions = append(g.sessions, uuid.NewString())
	}
	return g
}

// CheckServer verifies the target is reachable before the run starts.
func (g *Generator) CheckServer() error {
	resp, err := g.client.Get(g.cfg.BaseURL + "/api/analytics/summary")
	if err != nil {
		return fmt.Errorf("server not reachable at %s: %w", g.cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server responded %d at %s", resp.StatusCode, g.cfg.BaseURL)
	}
	return nil
}

// Run sends events until the context is cancelled or the configured count
// is reached. Individual send failures are logged and skipped.
func (g *Generator) Run(ctx context.Context) error {
	for {
		if g.cfg.Count > 0 && g.sent >= g.cfg.Count {
			log.Printf("Sent %d events, done", g.sent)
			return nil
		}

		ev := g.nextEvent()
		if err := g.send(ctx, ev); err != nil {
			log.Printf("Send failed: %v", err)
		} else {
			g.sent++
			log.Printf("Sent %s from %s (%s)", ev["type"], ev["country"], ev["sessionId"])
		}

		select {
		case <-ctx.Done():
			log.Printf("Stopping after %d events", g.sent)
			return ctx.Err()
		case <-time.After(g.nextDelay()):
		}
	}
}

// nextEvent builds one synthetic event: mostly pageviews, some clicks,
// the occasional session_end that retires a visitor from the pool.
func (g *Generator) nextEvent() map[string]interface{} {
	idx := g.rng.Intn(len(g.sessions))
	ev := map[string]interface{}{
		"country":   countries[g.rng.Intn(len(countries))],
		"page":      pages[g.rng.Intn(len(pages))],
		"sessionId": g.sessions[idx],
		"metadata": map[string]string{
			"device":   devices[g.rng.Intn(len(devices))],
			"referrer": referrers[g.rng.Intn(len(referrers))],
		},
	}

	switch roll := g.rng.Intn(100); {
	case roll < 70:
		ev["type"] = "pageview"
	case roll < 90:
		ev["type"] = "click"
	default:
		ev["type"] = "session_end"
		// Replace the ended visitor so the pool stays full.
		g.sessions[idx] = uuid.NewString()
	}
	return ev
}

func (g *Generator) send(ctx context.Context, ev map[string]interface{}) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/api/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server responded %d", resp.StatusCode)
	}
	return nil
}

func (g *Generator) nextDelay() time.Duration {
	spread := g.cfg.MaxDelay - g.cfg.MinDelay
	if spread <= 0 {
		return g.cfg.MinDelay
	}
	return g.cfg.MinDelay + time.Duration(g.rng.Int63n(int64(spread)))
}
