// Package kafka publishes diary notifications to Kafka with segmentio/kafka-go.
package kafka
