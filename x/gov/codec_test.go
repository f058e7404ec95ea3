package gov

import (
	"testing"

	"github.com/iov-one/dao/daotest"
)

func TestCodecSchema(t *testing.T) {
	cases := map[string]interface{}{
		"Proposal":      proposalRecord{},
		"VoteReceipt":   receiptRecord{},
		"Tally":         tallyRecord{},
		"Configuration": configurationRecord{},
	}
	for message, record := range cases {
		t.Run(message, func(t *testing.T) {
			daotest.AssertProtoSchema(t, "codec.proto", message, record)
		})
	}
}
