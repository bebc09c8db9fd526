package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/go-zookeeper/zk"
)

const (
	lockNodePrefix     = "lock-"
	maxEnqueueAttempts = 3
)

// zkConn is the subset of *zk.Conn the locker needs
type zkConn interface {
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)
	CreateProtectedEphemeralSequential(path string, data []byte, acl []zk.ACL) (string, error)
	Children(path string) ([]string, *zk.Stat, error)
	ExistsW(path string) (bool, *zk.Stat, <-chan zk.Event, error)
	Delete(path string, version int32) error
}

// ZookeeperLocker implements Locker with ephemeral sequential nodes.
// Each waiter watches only its predecessor, so a release wakes one waiter.
type ZookeeperLocker struct {
	conn zkConn
	root string
}

// NewZookeeperLocker creates a locker rooted at root (e.g. /channelsync/locks)
func NewZookeeperLocker(conn zkConn, root string) *ZookeeperLocker {
	return &ZookeeperLocker{conn: conn, root: strings.TrimRight(root, "/")}
}

// Acquire queues an ephemeral node under the key and waits until it is first.
// The key's parent node is removed again by the last release.
func (l *ZookeeperLocker) Acquire(ctx context.Context, key string, wait time.Duration) (shared.UnlockFunc, error) {
	keyPath := l.root + "/" + strings.ReplaceAll(key, "/", "_")
	node, err := l.enqueue(keyPath)
	if err != nil {
		return nil, err
	}
	release := func(context.Context) error {
		if err := l.conn.Delete(node, -1); err != nil && !errors.Is(err, zk.ErrNoNode) {
			return fmt.Errorf("failed to delete lock node %s: %w", node, err)
		}
		return l.removeIfEmpty(keyPath)
	}
	abandon := func(cause error) (shared.UnlockFunc, error) {
		_ = release(ctx)
		return nil, cause
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	myName := node[strings.LastIndex(node, "/")+1:]

	for {
		children, _, err := l.conn.Children(keyPath)
		if err != nil {
			return abandon(fmt.Errorf("failed to list lock nodes under %s: %w", keyPath, err))
		}
		sortBySequence(children)

		idx := indexOf(children, myName)
		if idx < 0 {
			return abandon(fmt.Errorf("lock node %s disappeared", node))
		}
		if idx == 0 {
			return release, nil
		}

		exists, _, events, err := l.conn.ExistsW(keyPath + "/" + children[idx-1])
		if err != nil {
			return abandon(fmt.Errorf("failed to watch lock node: %w", err))
		}
		if !exists {
			continue
		}

		select {
		case <-events:
		case <-ctx.Done():
			return abandon(ctx.Err())
		case <-timer.C:
			return abandon(notAcquired(key))
		}
	}
}

// enqueue creates the waiter's node under keyPath. A concurrent last release
// may delete keyPath between creating it and queueing, so that case retries.
func (l *ZookeeperLocker) enqueue(keyPath string) (string, error) {
	for attempt := 1; ; attempt++ {
		if err := l.ensurePath(keyPath); err != nil {
			return "", err
		}
		node, err := l.conn.CreateProtectedEphemeralSequential(keyPath+"/"+lockNodePrefix, nil, zk.WorldACL(zk.PermAll))
		if errors.Is(err, zk.ErrNoNode) && attempt < maxEnqueueAttempts {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create lock node under %s: %w", keyPath, err)
		}
		return node, nil
	}
}

// removeIfEmpty deletes the key's parent node unless other waiters are queued
func (l *ZookeeperLocker) removeIfEmpty(keyPath string) error {
	err := l.conn.Delete(keyPath, -1)
	if err != nil && !errors.Is(err, zk.ErrNotEmpty) && !errors.Is(err, zk.ErrNoNode) {
		return fmt.Errorf("failed to remove lock path %s: %w", keyPath, err)
	}
	return nil
}

func (l *ZookeeperLocker) ensurePath(path string) error {
	current := ""
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		current += "/" + part
		_, err := l.conn.Create(current, nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("failed to create lock path %s: %w", current, err)
		}
	}
	return nil
}

// sortBySequence orders protected sequential nodes by their sequence suffix.
// Plain string order would sort by the protection GUID instead.
func sortBySequence(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return sequenceOf(names[i]) < sequenceOf(names[j])
	})
}

func sequenceOf(name string) string {
	if i := strings.LastIndex(name, lockNodePrefix); i >= 0 {
		return name[i+len(lockNodePrefix):]
	}
	return name
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

var _ shared.Locker = (*ZookeeperLocker)(nil)
