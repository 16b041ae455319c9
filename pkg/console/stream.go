package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"asset-console/pkg/auth"
	"asset-console/pkg/model"
)

// ScanStream subscribes to the backend's websocket feed of scan progress so
// the active-task view updates between poll ticks. Frames go through the
// poller's epoch-guarded observation path; the stream is an accelerator,
// the poller stays authoritative.
type ScanStream struct {
	endpoint string
	tokens   auth.TokenSource
	poller   *Poller
	log      *zap.SugaredLogger
}

func NewScanStream(baseURL string, tokens auth.TokenSource, poller *Poller, log *zap.SugaredLogger) *ScanStream {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	u.Scheme = scheme
	u.Path = "/ws/scans"
	return &ScanStream{
		endpoint: u.String(),
		tokens:   tokens,
		poller:   poller,
		log:      log,
	}
}

// Run dials and reads until ctx is cancelled, redialing every 5s on loss.
func (s *ScanStream) Run(ctx context.Context) {
	if s == nil {
		return
	}
	for {
		header := http.Header{}
		if tok := s.tokens.Token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint, header)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			s.log.Warnf("scan stream dial failed: %v (url=%s status=%d)", err, s.endpoint, status)
			if !sleepCtx(ctx, 5*time.Second) {
				return
			}
			continue
		}
		s.log.Infof("scan stream connected url=%s", s.endpoint)
		s.readLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.log.Infof("scan stream disconnected, retrying in 5s")
		if !sleepCtx(ctx, 5*time.Second) {
			return
		}
	}
}

func (s *ScanStream) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "scan_progress":
			var task model.ScanTask
			if err := json.Unmarshal(msg.Payload, &task); err != nil {
				s.log.Warnf("scan stream bad progress frame: %v", err)
				continue
			}
			s.poller.Observe(&task)
		case "scan_done":
			s.poller.Observe(nil)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
