package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Pusher batches log lines and ships them to the Loki push API.

type Config struct {
	// Url of the loki push endpoint, e.g. https://loki.example.com/loki/api/v1/push
	Url string `validate:"required"`

	// Labels attached to every shipped line.
	Labels map[string]string

	// BatchSize is the number of lines that forces a flush.
	BatchSize int `validate:"gte=1"`

	// FlushInterval is the maximum time a line stays buffered.
	FlushInterval time.Duration `validate:"gte=1"`

	// Username and Password enable basic auth when both are set.
	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type Entry struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Caller  string `json:"caller,omitempty"`
}

// ErrorReporter receives failures of the background sender, so they can be
// logged without feeding back into the pusher itself.
type ErrorReporter func(err error)

type Pusher struct {
	config   *Config
	ctx      context.Context
	cancel   context.CancelFunc
	client   *http.Client
	entries  chan Entry
	buffered [][2]string
	report   ErrorReporter
	wg       sync.WaitGroup
}

type pushRequest struct {
	Streams []pushStream `json:"streams"`
}

type pushStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func New(ctx context.Context, cfg Config, report ErrorReporter) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config:   &cfg,
		ctx:      ctx,
		cancel:   cancel,
		client:   &http.Client{Timeout: 10 * time.Second},
		entries:  make(chan Entry, cfg.BatchSize),
		buffered: make([][2]string, 0, cfg.BatchSize),
		report:   report,
	}

	p.wg.Add(1)
	go p.run()
	return p, nil
}

// Push queues a log entry. Never blocks the caller beyond channel capacity.
func (p *Pusher) Push(e Entry) {
	select {
	case p.entries <- e:
	case <-p.ctx.Done():
	}
}

// Stop flushes buffered entries and shuts the sender down.
func (p *Pusher) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pusher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(p.buffered) == 0 {
			return
		}
		if err := p.send(); err != nil && p.report != nil {
			p.report(err)
		}
		p.buffered = p.buffered[:0]
	}
	defer flush()

	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case entry := <-p.entries:
			p.buffer(entry)
			if len(p.buffered) >= p.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entries:
			p.buffer(entry)
		default:
			return
		}
	}
}

func (p *Pusher) buffer(e Entry) {
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)
	p.buffered = append(p.buffered, [2]string{ts, string(line)})
}

func (p *Pusher) send() error {

	payload := pushRequest{Streams: []pushStream{{
		Stream: p.config.Labels,
		Values: p.buffered,
	}}}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(payload); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.config.Url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected response code from Loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
