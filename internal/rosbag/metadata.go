package rosbag

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MetadataFileName is the bag description written when a bag closes.
// Its creation is the signal that a bag is complete.
const MetadataFileName = "metadata.yaml"

// TopicMetadata mirrors rosbag2's topic_metadata mapping.
type TopicMetadata struct {
	Name                string `yaml:"name"`
	Type                string `yaml:"type"`
	SerializationFormat string `yaml:"serialization_format"`
	OfferedQosProfiles  string `yaml:"offered_qos_profiles"`
}

// TopicWithMessageCount pairs a topic description with its message count.
type TopicWithMessageCount struct {
	TopicMetadata TopicMetadata `yaml:"topic_metadata"`
	MessageCount  uint64        `yaml:"message_count"`
}

// BagInfo is the rosbag2_bagfile_information document, version 4.
type BagInfo struct {
	Version           int      `yaml:"version"`
	StorageIdentifier string   `yaml:"storage_identifier"`
	RelativeFilePaths []string `yaml:"relative_file_paths"`
	Duration          struct {
		Nanoseconds int64 `yaml:"nanoseconds"`
	} `yaml:"duration"`
	StartingTime struct {
		NanosecondsSinceEpoch int64 `yaml:"nanoseconds_since_epoch"`
	} `yaml:"starting_time"`
	MessageCount           uint64                  `yaml:"message_count"`
	TopicsWithMessageCount []TopicWithMessageCount `yaml:"topics_with_message_count"`
	CompressionFormat      string                  `yaml:"compression_format"`
	CompressionMode        string                  `yaml:"compression_mode"`
}

func (w *Writer) metadata() *BagInfo {
	info := &BagInfo{
		Version:           4,
		StorageIdentifier: "sqlite3",
		RelativeFilePaths: []string{w.storage},
		MessageCount:      w.messageCount,
	}
	if w.messageCount > 0 {
		info.Duration.Nanoseconds = w.maxTimestamp - w.minTimestamp
		info.StartingTime.NanosecondsSinceEpoch = w.minTimestamp
	}
	for _, name := range w.topicOrder {
		rec := w.topics[name]
		info.TopicsWithMessageCount = append(info.TopicsWithMessageCount, TopicWithMessageCount{
			TopicMetadata: TopicMetadata{
				Name:                rec.name,
				Type:                rec.typeName,
				SerializationFormat: serializationFormat,
			},
			MessageCount: rec.count,
		})
	}
	return info
}

func writeMetadata(dir string, info *BagInfo) error {
	doc := struct {
		Info *BagInfo `yaml:"rosbag2_bagfile_information"`
	}{info}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal bag metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write bag metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a bag's metadata.yaml.
func ReadMetadata(dir string) (*BagInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		return nil, err
	}
	var doc struct {
		Info *BagInfo `yaml:"rosbag2_bagfile_information"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bag metadata: %w", err)
	}
	return doc.Info, nil
}
