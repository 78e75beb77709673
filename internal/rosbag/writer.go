// Package rosbag writes rosbag2-compatible archives: an sqlite3 storage
// file holding CDR payloads plus the metadata.yaml bag description.
package rosbag

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// rosbag2's sqlite3 storage plugin format.
	_ "github.com/mattn/go-sqlite3"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

const serializationFormat = "cdr"

const storageSchema = `
CREATE TABLE topics(
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	serialization_format TEXT NOT NULL,
	offered_qos_profiles TEXT NOT NULL
);
CREATE TABLE messages(
	id INTEGER PRIMARY KEY,
	topic_id INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	data BLOB NOT NULL
);
CREATE INDEX timestamp_idx ON messages (timestamp ASC);
`

type topicRecord struct {
	id       int64
	name     string
	typeName string
	count    uint64
}

// Writer appends timestamped messages to one bag. It is owned by a
// single goroutine; rosbag2 storage offers no concurrent write safety
// and neither does Writer.
type Writer struct {
	dir     string
	storage string

	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt

	topics     map[string]*topicRecord
	topicOrder []string

	messageCount uint64
	minTimestamp int64
	maxTimestamp int64
}

// Create makes the bag directory and opens its storage file. The
// directory name becomes the bag name: dir "out/scene-0061" produces
// "out/scene-0061/scene-0061_0.db3".
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bag directory: %w", err)
	}
	storage := filepath.Base(dir) + "_0.db3"
	db, err := sql.Open("sqlite3", filepath.Join(dir, storage))
	if err != nil {
		return nil, fmt.Errorf("failed to open bag storage: %w", err)
	}
	if _, err = db.Exec(storageSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bag storage: %w", err)
	}
	w := &Writer{
		dir:     dir,
		storage: storage,
		db:      db,
		topics:  make(map[string]*topicRecord),
	}
	if w.tx, err = db.Begin(); err != nil {
		db.Close()
		return nil, err
	}
	w.insert, err = w.tx.Prepare(
		"INSERT INTO messages(topic_id, timestamp, data) VALUES(?, ?, ?)")
	if err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) createTopic(name, typeName string) (*topicRecord, error) {
	res, err := w.tx.Exec(
		"INSERT INTO topics(name, type, serialization_format, offered_qos_profiles) VALUES(?, ?, ?, ?)",
		name, typeName, serializationFormat, "",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec := &topicRecord{id: id, name: name, typeName: typeName}
	w.topics[name] = rec
	w.topicOrder = append(w.topicOrder, name)
	return rec, nil
}

// Write appends m to the named topic. The topic is created on first use
// with the message's type. Within a topic, storage order is call order.
func (w *Writer) Write(topic string, timestamp int64, m ros.Message) error {
	rec, ok := w.topics[topic]
	if !ok {
		var err error
		if rec, err = w.createTopic(topic, m.TypeName()); err != nil {
			return err
		}
	}
	if _, err := w.insert.Exec(rec.id, timestamp, ros.Serialize(m)); err != nil {
		return fmt.Errorf("failed to write to topic %q: %w", topic, err)
	}
	rec.count++
	if w.messageCount == 0 || timestamp < w.minTimestamp {
		w.minTimestamp = timestamp
	}
	if w.messageCount == 0 || timestamp > w.maxTimestamp {
		w.maxTimestamp = timestamp
	}
	w.messageCount++
	return nil
}

// MessageCount reports the number of messages written so far.
func (w *Writer) MessageCount() uint64 { return w.messageCount }

// Close commits the storage file and writes metadata.yaml beside it.
// metadata.yaml is written last so its appearance marks bag completion.
func (w *Writer) Close() error {
	if err := w.insert.Close(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to close bag storage: %w", err)
	}
	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit bag storage: %w", err)
	}
	if err := w.db.Close(); err != nil {
		return err
	}
	return writeMetadata(w.dir, w.metadata())
}
