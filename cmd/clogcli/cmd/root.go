// Package cmd implements clogcli's cobra command tree.
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamworks-oss/clog/cluster"
	"github.com/streamworks-oss/clog/compression"
	"github.com/streamworks-oss/clog/producer"
	"github.com/streamworks-oss/clog/seedaddr"
)

var (
	seedsFlag       string
	clientIdFlag    string
	requiredAcksFlag int
	ackTimeoutFlag  int
	maxRetriesFlag  int
	compressionFlag string
)

var rootCmd = &cobra.Command{
	Use:           "clogcli",
	Short:         "Command-line client for a clog cluster",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&seedsFlag, "seeds", "s", "kafka://localhost:9092",
		"comma-separated seed broker URIs (set by this flag only; no environment variable is read)")
	rootCmd.PersistentFlags().StringVar(&clientIdFlag, "client-id", "clogcli",
		"client id sent with every request")
	rootCmd.PersistentFlags().IntVar(&requiredAcksFlag, "acks", 1,
		"required acks: 0, 1, or -1 (all)")
	rootCmd.PersistentFlags().IntVar(&ackTimeoutFlag, "ack-timeout-ms", 1000,
		"broker-side ack timeout in milliseconds")
	rootCmd.PersistentFlags().IntVar(&maxRetriesFlag, "max-retries", 3,
		"maximum delivery attempts beyond the first")
	rootCmd.PersistentFlags().StringVar(&compressionFlag, "compression", "none",
		"compression codec: none, gzip, or snappy")

	rootCmd.AddCommand(produceCmd)
}

func newProducer() (*producer.Producer, error) {
	addrs, err := seedaddr.ParseAll(strings.Split(seedsFlag, ","))
	if err != nil {
		return nil, err
	}
	c := cluster.NewFromConfig(cluster.NewConfig(addrs, cluster.WithClientId(clientIdFlag)))

	codec, err := compression.ParseCodec(compressionFlag)
	if err != nil {
		return nil, err
	}

	cfg := producer.NewConfig(
		producer.WithRequiredAcks(int16(requiredAcksFlag)),
		producer.WithAckTimeout(int32(ackTimeoutFlag)),
		producer.WithMaxRetries(maxRetriesFlag),
		producer.WithRetryBackoff(500*time.Millisecond),
		producer.WithCompression(codec, 1),
	)
	return producer.New(c, cfg), nil
}

func printf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
