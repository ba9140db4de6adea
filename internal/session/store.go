package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyEntries  = "devnotes.taggedContext"
	keyAnalysis = "devnotes.lastAnalysis"
	keyDiagram  = "devnotes.lastDiagram"
)

// Store 会话持久化
type Store interface {
	Load(s *Session) error
	Save(s *Session) error
	Close() error
}

// StoreConfig BadgerDB 配置
type StoreConfig struct {
	// Path 数据目录，InMemory 为 true 时忽略
	Path string
	// InMemory 不落盘，用于测试
	InMemory bool
	// Logger 为 nil 时关闭 badger 内部日志
	Logger *slog.Logger
}

// BadgerStore persists a Session as JSON values in BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger 将 slog 适配为 badger.Logger
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenStore 打开（必要时创建）会话存储
func OpenStore(cfg StoreConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("session: store path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load 将已保存的条目与最近分析读入 s；从未保存过的键被跳过
func (b *BadgerStore) Load(s *Session) error {
	var entries []Entry
	if err := b.get(keyEntries, &entries); err == nil {
		s.SetEntries(entries)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	var diagram LastDiagram
	if err := b.get(keyDiagram, &diagram); err == nil {
		s.SetLastDiagram(diagram)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	var analysis Analysis
	if err := b.get(keyAnalysis, &analysis); err == nil {
		s.SetLastAnalysis(analysis)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Save 在一个事务中写入会话状态
func (b *BadgerStore) Save(s *Session) error {
	values := map[string]any{keyEntries: s.Entries()}
	if d, ok := s.LastDiagram(); ok {
		values[keyDiagram] = d
	}
	if a, ok := s.LastAnalysis(); ok {
		values[keyAnalysis] = a
	}

	return b.db.Update(func(txn *badger.Txn) error {
		for k, v := range values {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode %s: %w", k, err)
			}
			if err := txn.Set([]byte(k), data); err != nil {
				return fmt.Errorf("write %s: %w", k, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func (b *BadgerStore) get(key string, v any) error {
	return b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	})
}
