package kafka

import (
	"encoding/json"
	"errors"
	"testing"

	"bank-settlement-engine/internal/models"

	"github.com/IBM/sarama"
	saramamocks "github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_SendTransferIntent(t *testing.T) {
	sp := saramamocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "ledger.transfers.requested" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var intent models.TransferIntent
		if err := json.Unmarshal(value, &intent); err != nil {
			return err
		}
		if intent.TransactionID != 42 || !intent.Amount.Equal(decimal.RequireFromString("150.00")) {
			return errors.New("unexpected payload")
		}
		return nil
	})

	producer := NewProducerWith(sp, "ledger.transfers.requested")
	defer producer.Close()

	err := producer.SendTransferIntent(&models.TransferIntent{
		TransactionID: 42,
		SrcAccount:    1,
		DestAccount:   2,
		Amount:        decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)
}

func TestProducer_SendTransferIntent_Error(t *testing.T) {
	sp := saramamocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerWith(sp, "ledger.transfers.requested")
	defer producer.Close()

	err := producer.SendTransferIntent(&models.TransferIntent{TransactionID: 1, SrcAccount: 1, DestAccount: 2, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}
