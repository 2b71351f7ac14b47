package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const timestampLayout = "2006-01-02 15:04:05"

// retention is how long visitor rows are kept.
const retention = "-12 months"

// VisitorMetric is one recorded page view. The IP is only stored hashed.
type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// PathStat counts views of one path.
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TopPaths         []PathStat      `json:"top_paths"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// Tracker records privacy-hashed page views in sqlite.
type Tracker struct {
	db   *sql.DB
	salt string
	log  *slog.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewTracker creates the visitors table if needed.
func NewTracker(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{db: db, salt: randomHex(32), log: logger, now: time.Now}
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		path TEXT,
		timestamp TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create visitors table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors(timestamp)`); err != nil {
		return nil, fmt.Errorf("create visitors index: %w", err)
	}
	return t, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(b)
}

// HashIP hashes ip with the per-process salt, consistently per IP.
func (t *Tracker) HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + t.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// untracked paths are never recorded.
var untracked = []string{"/static/", "/images/", "/admin", "/events", "/healthz", "/favicon", "/privacy", "/viewer/"}

// Middleware records page views in the background. Requests with DNT: 1 are
// not recorded.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range untracked {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" || c.Request.Method != "GET" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.Record(context.Background(), ip, ua, path)
		}()
		c.Next()
	}
}

// Record stores one page view.
func (t *Tracker) Record(ctx context.Context, ip, userAgent, path string) {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		t.HashIP(ip), userAgent, path, t.now().UTC().Format(timestampLayout))
	if err != nil {
		t.log.Error("recording visitor failed", "err", err)
	}
}

// Wait blocks until background recordings finish.
func (t *Tracker) Wait() { t.wg.Wait() }

// Cleanup removes rows older than twelve months.
func (t *Tracker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := t.now().UTC().AddDate(0, -12, 0).Format(timestampLayout)
	res, err := t.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		t.log.Info("privacy cleanup removed old visitor records", "rows", n, "older_than", retention)
	}
	return n, nil
}

// Stats aggregates the dashboard numbers.
func (t *Tracker) Stats(ctx context.Context) (*AdminStats, error) {
	now := t.now().UTC()
	today := now.Format("2006-01-02") + " 00:00:00"
	week := now.AddDate(0, 0, -7).Format(timestampLayout)

	stats := &AdminStats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{today}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{week}},
	}
	for _, q := range counts {
		if err := t.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("visitor stats: %w", err)
		}
	}

	rows, err := t.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views FROM visitors
		GROUP BY path ORDER BY views DESC, path LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	for rows.Next() {
		var p PathStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			continue
		}
		stats.TopPaths = append(stats.TopPaths, p)
	}
	rows.Close()

	recent, err := t.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent
	return stats, nil
}

// Recent returns the latest page views, newest first.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	var out []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			continue
		}
		v.Timestamp, _ = time.Parse(timestampLayout, ts)
		out = append(out, v)
	}
	return out, rows.Err()
}
