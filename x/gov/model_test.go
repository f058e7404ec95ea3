package gov

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/daotest"
	"github.com/iov-one/dao/daotest/assert"
	"github.com/iov-one/dao/errors"
)

func TestProposalValidate(t *testing.T) {
	cases := map[string]struct {
		proposal *Proposal
		wantErr  *errors.Error
	}{
		"valid": {
			proposal: &Proposal{
				Amount:    coin.Units(1),
				Votes:     coin.Zero(),
				Recipient: daotest.NewAddress(),
				Author:    daotest.NewAddress(),
			},
		},
		"zero amount is valid": {
			proposal: &Proposal{
				Amount:    coin.Zero(),
				Votes:     coin.Zero(),
				Recipient: daotest.NewAddress(),
				Author:    daotest.NewAddress(),
			},
		},
		"missing amount": {
			proposal: &Proposal{
				Votes:     coin.Zero(),
				Recipient: daotest.NewAddress(),
				Author:    daotest.NewAddress(),
			},
			wantErr: errors.ErrModel,
		},
		"missing votes": {
			proposal: &Proposal{
				Amount:    coin.Units(1),
				Recipient: daotest.NewAddress(),
				Author:    daotest.NewAddress(),
			},
			wantErr: errors.ErrModel,
		},
		"invalid recipient": {
			proposal: &Proposal{
				Amount:    coin.Units(1),
				Votes:     coin.Zero(),
				Recipient: []byte{1, 2, 3},
				Author:    daotest.NewAddress(),
			},
			wantErr: errors.ErrModel,
		},
		"missing author": {
			proposal: &Proposal{
				Amount:    coin.Units(1),
				Votes:     coin.Zero(),
				Recipient: daotest.NewAddress(),
			},
			wantErr: errors.ErrModel,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.proposal.Validate())
		})
	}
}

func TestProposalSerialization(t *testing.T) {
	p := &Proposal{
		ID:          7,
		Description: "pay for the audit",
		Amount:      coin.Units(100),
		Recipient:   daotest.NewAddress(),
		Votes:       coin.Units(400000),
		Finalized:   true,
		Author:      daotest.NewAddress(),
	}
	raw, err := p.Marshal()
	assert.Nil(t, err)

	var got Proposal
	assert.Nil(t, got.Unmarshal(raw))
	// the ID is part of the key, not of the value
	assert.Equal(t, uint64(0), got.ID)
	assert.Nil(t, got.SetID(p.GetID()))
	assert.Equal(t, p, &got)

	assert.IsErr(t, errors.ErrModel, got.Unmarshal([]byte{0xff, 0x01}))
}

func TestProposalID(t *testing.T) {
	var p Proposal
	assert.Equal(t, 0, len(p.GetID()))
	assert.IsErr(t, errors.ErrInput, p.SetID([]byte{1}))
	assert.Nil(t, p.SetID(daotest.SequenceID(42)))
	assert.Equal(t, uint64(42), p.ID)
	assert.Equal(t, daotest.SequenceID(42), p.GetID())
}

func TestProposalCopy(t *testing.T) {
	p := &Proposal{
		ID:        1,
		Amount:    coin.Units(1),
		Votes:     coin.Zero(),
		Recipient: daotest.NewAddress(),
		Author:    daotest.NewAddress(),
	}
	cpy := p.Copy()
	assert.Equal(t, p, cpy)

	cpy.Votes.SetUint64(5)
	cpy.Recipient[0]++
	assert.Equal(t, true, p.Votes.IsZero())
	assert.Equal(t, false, p.Recipient.Equals(cpy.Recipient))
}

func TestConfigurationJSON(t *testing.T) {
	cases := map[string]struct {
		raw        string
		wantErr    *errors.Error
		wantQuorum string
	}{
		"whole units": {
			raw:        `{"quorum": "500000"}`,
			wantQuorum: "500000000000000000000000",
		},
		"one base unit over": {
			raw:        `{"quorum": "500000.000000000000000001"}`,
			wantQuorum: "500000000000000000000001",
		},
		"zero": {
			raw:        `{"quorum": "0"}`,
			wantQuorum: "0",
		},
		"not a number": {
			raw:     `{"quorum": "half"}`,
			wantErr: errors.ErrInput,
		},
		"not an object": {
			raw:     `[]`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var conf Configuration
			err := json.Unmarshal([]byte(tc.raw), &conf)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			assert.Nil(t, conf.Validate())
			assert.Equal(t, tc.wantQuorum, conf.Quorum.Dec())

			// the JSON form reads back to the same value
			raw, err := json.Marshal(conf)
			assert.Nil(t, err)
			var again Configuration
			assert.Nil(t, json.Unmarshal(raw, &again))
			assert.Equal(t, conf.Quorum.Dec(), again.Quorum.Dec())
		})
	}
}

func TestConfigurationValidate(t *testing.T) {
	assert.IsErr(t, errors.ErrModel, (&Configuration{}).Validate())
	assert.Nil(t, (&Configuration{Quorum: coin.Zero()}).Validate())
}
