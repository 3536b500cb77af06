package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/ossim/internal/idgen"
	"github.com/viant/ossim/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Message is a queued payload persisted as one JSON file.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	name      string
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed folder.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.completeMessage(context.Background(), m)
}

// Nack moves the message to the failed folder for redelivery, or to the
// dead-letter folder once its retries are exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	return m.queue.failMessage(context.Background(), m)
}

// Config holds configuration for filesystem queue
type Config struct {
	// URL is the queue base location, any afs URL or local path.
	URL string `json:"url" yaml:"url"`
	// MaxRetries is the number of redeliveries of a nacked message.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
	// PollInterval is how often an empty queue is checked while consuming.
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		PollInterval: 20 * time.Millisecond,
	}
}

// Queue implements messaging.Queue over a directory tree: pending,
// processing, completed, failed and dlq.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingURL    string
	processingURL string
	completedURL  string
	failedURL     string
	dlqURL        string
	seq           uint64
	mu            sync.Mutex
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)

// NewQueue creates a filesystem queue, creating its folders when missing.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.URL == "" {
		return nil, fmt.Errorf("queue URL cannot be empty")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	baseURL := url.Normalize(config.URL, file.Scheme)
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingURL:    url.Join(baseURL, "pending"),
		processingURL: url.Join(baseURL, "processing"),
		completedURL:  url.Join(baseURL, "completed"),
		failedURL:     url.Join(baseURL, "failed"),
		dlqURL:        url.Join(baseURL, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingURL, q.processingURL, q.completedURL, q.failedURL, q.dlqURL} {
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish writes the payload to the pending folder.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	message := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	q.mu.Lock()
	q.seq++
	// file names sort in publish order
	name := fmt.Sprintf("%019d-%010d-%s.json", now.UnixNano(), q.seq, message.ID)
	q.mu.Unlock()
	return q.upload(ctx, url.Join(q.pendingURL, name), data)
}

// Consume claims the oldest failed message due for retry, otherwise the
// oldest pending one. It polls until a message arrives or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		message, err := q.next(ctx)
		if err != nil {
			return nil, err
		}
		if message != nil {
			return message, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.config.PollInterval):
		}
	}
}

func (q *Queue[T]) next(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if message, err := q.claim(ctx, q.failedURL); message != nil || err != nil {
		return message, err
	}
	return q.claim(ctx, q.pendingURL)
}

// claim moves the first message of folder to processing.
func (q *Queue[T]) claim(ctx context.Context, folder string) (*Message[T], error) {
	objects, err := q.fs.List(ctx, folder, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}
	var candidates []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			candidates = append(candidates, obj)
		}
	}
	slices.SortFunc(candidates, func(a, b storage.Object) int {
		return strings.Compare(a.Name(), b.Name())
	})
	for _, obj := range candidates {
		message, err := q.read(ctx, obj.URL())
		if err != nil {
			_ = q.fs.Move(ctx, obj.URL(), url.Join(q.dlqURL, "invalid-"+obj.Name()))
			return nil, err
		}
		if message.Retries > q.config.MaxRetries {
			if err := q.fs.Move(ctx, obj.URL(), url.Join(q.dlqURL, obj.Name())); err != nil {
				return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
			}
			continue
		}
		message.State = MessageStateProcessing
		message.UpdatedAt = time.Now()
		message.queue = q
		message.name = obj.Name()
		data, err := json.Marshal(message)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message: %w", err)
		}
		if err := q.upload(ctx, url.Join(q.processingURL, obj.Name()), data); err != nil {
			return nil, fmt.Errorf("failed to move message to processing: %w", err)
		}
		if err := q.fs.Delete(ctx, obj.URL()); err != nil {
			return nil, fmt.Errorf("failed to delete claimed message: %w", err)
		}
		return message, nil
	}
	return nil, nil
}

func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	return q.settle(ctx, m, q.completedURL)
}

func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	if m.Retries > q.config.MaxRetries {
		return q.settle(ctx, m, q.dlqURL)
	}
	return q.settle(ctx, m, q.failedURL)
}

// settle writes m to folder and drops its processing copy.
func (q *Queue[T]) settle(ctx context.Context, m *Message[T], folder string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := q.upload(ctx, url.Join(folder, m.name), data); err != nil {
		return fmt.Errorf("failed to write message %s: %w", m.ID, err)
	}
	processing := url.Join(q.processingURL, m.name)
	if exists, _ := q.fs.Exists(ctx, processing); exists {
		if err := q.fs.Delete(ctx, processing); err != nil {
			return fmt.Errorf("failed to delete message from processing: %w", err)
		}
	}
	return nil
}

// Count returns the number of messages in a folder: pending, processing,
// completed, failed or dlq.
func (q *Queue[T]) Count(ctx context.Context, state string) (int, error) {
	folder := map[string]string{
		"pending":    q.pendingURL,
		"processing": q.processingURL,
		"completed":  q.completedURL,
		"failed":     q.failedURL,
		"dlq":        q.dlqURL,
	}[state]
	if folder == "" {
		return 0, fmt.Errorf("unknown queue folder: %s", state)
	}
	objects, err := q.fs.List(ctx, folder, option.NewRecursive(false))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

func (q *Queue[T]) upload(ctx context.Context, URL string, data []byte) error {
	return q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return &message, nil
}
