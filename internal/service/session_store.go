package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"grader_web/internal/grading"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// GradingSession 一个评分者在一个作业上的全部状态
type GradingSession struct {
	GraderID     string               `json:"graderId"`
	AssignmentID string               `json:"assignmentId"`
	Assignment   *model.Assignment    `json:"assignment"`
	Inference    *model.Inference     `json:"inference"`
	Grades       *grading.Accumulator `json:"grades"`
	Pager        *grading.Pager       `json:"pager"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Current 当前页的答案
func (s *GradingSession) Current() model.Answer {
	return s.Assignment.Answers[s.Pager.Index()]
}

type SessionStore interface {
	// Get 不存在时返回 util.ErrSessionNotFound
	Get(ctx context.Context, graderID, assignmentID string) (*GradingSession, error)
	Save(ctx context.Context, session *GradingSession) error
	Delete(ctx context.Context, graderID, assignmentID string) error
}

func sessionKey(graderID, assignmentID string) string {
	return fmt.Sprintf("grader:session:%s:%s", graderID, assignmentID)
}

func encodeSession(s *GradingSession) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(data []byte) (*GradingSession, error) {
	var s GradingSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Assignment == nil || s.Grades == nil || s.Pager == nil {
		return nil, fmt.Errorf("incomplete grading session")
	}
	if s.Pager.Total() != len(s.Assignment.Answers) {
		return nil, fmt.Errorf("pager size %d does not match %d answers", s.Pager.Total(), len(s.Assignment.Answers))
	}
	return &s, nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore 进程内存储。保存编码后的快照，调用方拿到的都是副本
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Get(ctx context.Context, graderID, assignmentID string) (*GradingSession, error) {
	m.mu.RLock()
	e, ok := m.entries[sessionKey(graderID, assignmentID)]
	m.mu.RUnlock()
	if !ok || (m.ttl > 0 && m.now().After(e.expiresAt)) {
		return nil, util.ErrSessionNotFound
	}
	return decodeSession(e.data)
}

func (m *MemorySessionStore) Save(ctx context.Context, session *GradingSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionKey(session.GraderID, session.AssignmentID)] = memoryEntry{
		data:      data,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, graderID, assignmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionKey(graderID, assignmentID))
	return nil
}

// Sweep 清理过期会话
func (m *MemorySessionStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if m.ttl > 0 && now.After(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// RedisSessionStore 多实例部署时共享评分会话
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionStore) Get(ctx context.Context, graderID, assignmentID string) (*GradingSession, error) {
	data, err := r.rdb.Get(ctx, sessionKey(graderID, assignmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

func (r *RedisSessionStore) Save(ctx context.Context, session *GradingSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(session.GraderID, session.AssignmentID), data, r.ttl).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, graderID, assignmentID string) error {
	return r.rdb.Del(ctx, sessionKey(graderID, assignmentID)).Err()
}

// sessionLocks 按会话 key 加锁，不同评分者、不同作业之间互不阻塞
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock 返回解锁函数，最后一个持有者解锁时释放该 key
func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	sl, ok := l.locks[key]
	if !ok {
		sl = &sessionLock{}
		l.locks[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// size 当前被持有或等待的 key 数
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
