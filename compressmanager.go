package main

import (
	"container/heap"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"golang.org/x/sync/semaphore"

	"github.com/robolog/nuscenes2bag/internal/rosbag"
)

var bagFileRegex = regexp.MustCompile(`^(.*)_(\d+)\.db3$`)

type bagMetadata struct {
	// Path of the storage file.
	path   string
	number int
	isNew  bool
	index  int
}

func newBagMetadata(path string, isNew bool) *bagMetadata {
	matches := bagFileRegex.FindStringSubmatch(filepath.Base(path))
	if matches == nil {
		return nil
	}
	number, err := strconv.Atoi(matches[2])
	if err != nil {
		// The regex only matches a parsable integer. If a parsing error
		// occurs, it is an error in the regex.
		panic(err)
	}
	return &bagMetadata{path: path, number: number, isNew: isNew}
}

type bagQueue []*bagMetadata

func (a bagQueue) Len() int { return len(a) }

func (a bagQueue) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
	a[i].index = i
	a[j].index = j
}

// Newly finished bags are compressed newest first, leftovers from
// previous runs oldest first, and fresh bags always win over leftovers.
func (a bagQueue) Less(i, j int) bool {
	if a[i].isNew != a[j].isNew {
		return a[i].isNew
	}
	if a[i].number != a[j].number {
		if a[i].isNew {
			return a[i].number > a[j].number
		}
		return a[i].number < a[j].number
	}
	return a[i].path < a[j].path
}

func (a *bagQueue) Push(x interface{}) {
	n := len(*a)
	item := x.(*bagMetadata)
	item.index = n
	*a = append(*a, item)
}

func (a *bagQueue) Pop() interface{} {
	old := *a
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*a = old[0 : n-1]
	return item
}

type compressBagFunc = func(context.Context, *bagMetadata) error

// compressManager compresses finished bag storage files on a bounded
// pool of workers. Every storage file is enqueued at most once.
type compressManager struct {
	log         zerolog.Logger
	workerCount *semaphore.Weighted
	compressBag compressBagFunc
	wip         sync.WaitGroup

	mutex sync.Mutex
	// +checklocks:mutex
	queue bagQueue
	// +checklocks:mutex
	seen map[string]bool
}

func newCompressManager(workerCount int, log zerolog.Logger) *compressManager {
	m := &compressManager{
		log:         log,
		workerCount: semaphore.NewWeighted(int64(workerCount)),
		seen:        make(map[string]bool),
	}
	m.compressBag = m.xzCompressBag
	return m
}

// LoadExistingBags enqueues storage files of complete bags left over
// from earlier runs. Bags without a metadata file are still being
// written and are picked up by the watcher once they finish.
func (m *compressManager) LoadExistingBags(dir string) error {
	pattern := escapeMatchPattern(filepath.Clean(dir)) + "/*/*.db3"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, match := range matches {
		metadataPath := filepath.Join(filepath.Dir(match), rosbag.MetadataFileName)
		if _, err := os.Stat(metadataPath); err != nil {
			continue
		}
		if bag := newBagMetadata(match, false); bag != nil && !m.seen[bag.path] {
			m.seen[bag.path] = true
			m.wip.Add(1)
			m.queue = append(m.queue, bag)
		}
	}
	heap.Init(&m.queue)
	return nil
}

// AddCompleted enqueues every storage file of a finished bag directory
// and starts a worker for them.
func (m *compressManager) AddCompleted(ctx context.Context, dir string) {
	pattern := escapeMatchPattern(filepath.Clean(dir)) + "/*.db3"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		m.log.Warn().Err(err).Str("bag", dir).Msg("failed to find bag storage files")
		return
	}
	for _, match := range matches {
		if bag := newBagMetadata(match, true); bag != nil {
			m.add(ctx, bag)
		}
	}
}

func (m *compressManager) add(ctx context.Context, bag *bagMetadata) {
	m.mutex.Lock()
	if m.seen[bag.path] {
		m.mutex.Unlock()
		return
	}
	m.seen[bag.path] = true
	m.wip.Add(1)
	heap.Push(&m.queue, bag)
	m.mutex.Unlock()
	go m.StartWorker(ctx)
}

// StartWorker processes queued bags until the queue drains or all
// worker slots are taken. On context cancellation the remaining queue
// entries are discarded so Wait does not block on them.
func (m *compressManager) StartWorker(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			m.discardQueued()
			return
		}
		bag := func() *bagMetadata {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			if !m.workerCount.TryAcquire(1) {
				return nil
			}
			if bag := m.nextBag(); bag != nil {
				return bag
			}
			m.workerCount.Release(1)
			return nil
		}()
		if bag == nil {
			return
		}
		if err := m.compressBag(ctx, bag); err == nil {
			m.log.Info().Str("bag", bag.path).Msg("bag compressed")
		} else {
			m.log.Error().Err(err).Str("bag", bag.path).Msg("failed to compress bag")
		}
		m.wip.Done()
		m.workerCount.Release(1)
	}
}

// Wait blocks until every bag enqueued so far has been processed or
// discarded.
func (m *compressManager) Wait() {
	m.wip.Wait()
}

// discardQueued releases the wait counts of bags that will never be
// processed because the context was cancelled.
func (m *compressManager) discardQueued() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for len(m.queue) > 0 {
		heap.Pop(&m.queue)
		m.wip.Done()
	}
}

// +checklocks:m.mutex
func (m *compressManager) nextBag() *bagMetadata {
	if len(m.queue) == 0 {
		return nil
	}
	bag := heap.Pop(&m.queue).(*bagMetadata)
	if len(m.queue) < cap(m.queue)/3 {
		old := m.queue
		m.queue = make(bagQueue, len(old))
		copy(m.queue, old)
	}
	return bag
}

// xzCompressBag replaces the storage file with an xz-compressed copy.
func (m *compressManager) xzCompressBag(ctx context.Context, bag *bagMetadata) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	m.log.Debug().Str("bag", bag.path).Msg("compressing bag")
	in, err := os.Open(bag.path)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(bag.path+".xz", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(bag.path + ".xz")
		}
	}()
	enc, err := xz.NewWriter(out)
	if err != nil {
		return err
	}
	if _, err = io.Copy(enc, in); err != nil {
		enc.Close()
		return err
	}
	if err = enc.Close(); err != nil {
		return err
	}
	return os.Remove(bag.path)
}

var matchPatternEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`,
)

func escapeMatchPattern(s string) string {
	return matchPatternEscaper.Replace(s)
}
