package cmd

import (
	"github.com/spf13/cobra"

	"github.com/streamworks-oss/clog/producer"
)

var (
	producePartitionKey string
	producePartition    int
)

var produceCmd = &cobra.Command{
	Use:   "produce TOPIC VALUE",
	Short: "Produce a single record to a topic and wait for delivery",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		topic, value := args[0], args[1]

		p, err := newProducer()
		if err != nil {
			return err
		}
		defer p.Shutdown()

		var opts []producer.RecordOption
		if producePartition >= 0 {
			opts = append(opts, producer.WithPartition(int32(producePartition)))
		} else if producePartitionKey != "" {
			opts = append(opts, producer.WithPartitionKey([]byte(producePartitionKey)))
		}

		if err := p.Produce(topic, []byte(value), nil, opts...); err != nil {
			return err
		}
		if err := p.DeliverMessages(); err != nil {
			return err
		}
		printf("delivered 1 record to %s", topic)
		return nil
	},
}

func init() {
	produceCmd.Flags().StringVar(&producePartitionKey, "partition-key", "",
		"partition key used to steer (but not transmit) partition assignment")
	produceCmd.Flags().IntVar(&producePartition, "partition", -1,
		"explicit partition to produce to, bypassing the partitioner")
}
