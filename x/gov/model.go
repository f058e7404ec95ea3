package gov

import (
	"encoding/json"

	"github.com/gogo/protobuf/proto"
	"github.com/holiman/uint256"
	"github.com/iov-one/dao"
	"github.com/iov-one/dao/coin"
	"github.com/iov-one/dao/errors"
	"github.com/iov-one/dao/gconf"
	"github.com/iov-one/dao/orm"
)

// Proposal is a request to send Amount of the treasury funds to Recipient.
type Proposal struct {
	ID          uint64
	Description string
	Amount      *uint256.Int
	Recipient   dao.Address
	// Votes is the accumulated stake weight of all votes.
	Votes     *uint256.Int
	Finalized bool
	Author    dao.Address
}

var _ orm.SerialModel = (*Proposal)(nil)

// Validate ensures the proposal is well formed.
func (p *Proposal) Validate() error {
	if p.Amount == nil {
		return errors.Wrap(errors.ErrModel, "missing amount")
	}
	if p.Votes == nil {
		return errors.Wrap(errors.ErrModel, "missing votes")
	}
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrap(errors.ErrModel, "invalid recipient")
	}
	if err := p.Author.Validate(); err != nil {
		return errors.Wrap(errors.ErrModel, "invalid author")
	}
	return nil
}

// Copy returns a deep copy of the proposal.
func (p *Proposal) Copy() *Proposal {
	cpy := *p
	if p.Amount != nil {
		cpy.Amount = new(uint256.Int).Set(p.Amount)
	}
	if p.Votes != nil {
		cpy.Votes = new(uint256.Int).Set(p.Votes)
	}
	cpy.Recipient = p.Recipient.Clone()
	cpy.Author = p.Author.Clone()
	return &cpy
}

// GetID returns the sequence encoded ID, or nil if not yet assigned.
func (p *Proposal) GetID() []byte {
	if p.ID == 0 {
		return nil
	}
	return orm.EncodeSequence(p.ID)
}

// SetID sets the ID from its sequence encoded form.
func (p *Proposal) SetID(id []byte) error {
	if err := orm.ValidateSequence(id); err != nil {
		return err
	}
	n, err := orm.DecodeSequence(id)
	if err != nil {
		return err
	}
	p.ID = n
	return nil
}

// Marshal implements dao.Persistent.
func (p *Proposal) Marshal() ([]byte, error) {
	return proto.Marshal(&proposalRecord{
		Description: p.Description,
		Amount:      coin.Encode(p.Amount),
		Recipient:   p.Recipient,
		Votes:       coin.Encode(p.Votes),
		Finalized:   p.Finalized,
		Author:      p.Author,
	})
}

// Unmarshal implements dao.Persistent. The ID is left untouched.
func (p *Proposal) Unmarshal(raw []byte) error {
	var rec proposalRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	amount, err := coin.Decode(rec.Amount)
	if err != nil {
		return errors.Wrap(err, "amount")
	}
	votes, err := coin.Decode(rec.Votes)
	if err != nil {
		return errors.Wrap(err, "votes")
	}
	p.Description = rec.Description
	p.Amount = amount
	p.Recipient = rec.Recipient
	p.Votes = votes
	p.Finalized = rec.Finalized
	p.Author = rec.Author
	return nil
}

// VoteReceipt proves a voter took part in a vote. It keeps the weight the
// vote contributed.
type VoteReceipt struct {
	Weight *uint256.Int
}

var _ orm.Model = (*VoteReceipt)(nil)

// Validate ensures the receipt is well formed.
func (r *VoteReceipt) Validate() error {
	if r.Weight == nil {
		return errors.Wrap(errors.ErrModel, "missing weight")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (r *VoteReceipt) Marshal() ([]byte, error) {
	return proto.Marshal(&receiptRecord{Weight: coin.Encode(r.Weight)})
}

// Unmarshal implements dao.Persistent.
func (r *VoteReceipt) Unmarshal(raw []byte) error {
	var rec receiptRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	weight, err := coin.Decode(rec.Weight)
	if err != nil {
		return err
	}
	r.Weight = weight
	return nil
}

// Tally is the running sum of vote weights of a proposal.
type Tally struct {
	Total *uint256.Int
}

var _ orm.Model = (*Tally)(nil)

// Validate ensures the tally is well formed.
func (t *Tally) Validate() error {
	if t.Total == nil {
		return errors.Wrap(errors.ErrModel, "missing total")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (t *Tally) Marshal() ([]byte, error) {
	return proto.Marshal(&tallyRecord{Total: coin.Encode(t.Total)})
}

// Unmarshal implements dao.Persistent.
func (t *Tally) Unmarshal(raw []byte) error {
	var rec tallyRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	total, err := coin.Decode(rec.Total)
	if err != nil {
		return err
	}
	t.Total = total
	return nil
}

const packageName = "gov"

// Configuration holds the governance rules. It is written once at genesis.
type Configuration struct {
	// Quorum is the minimal accumulated stake weight a proposal needs to
	// be finalized.
	Quorum *uint256.Int
}

var _ gconf.Configuration = (*Configuration)(nil)

// Validate ensures the configuration is well formed.
func (c *Configuration) Validate() error {
	if c.Quorum == nil {
		return errors.Wrap(errors.ErrModel, "missing quorum")
	}
	return nil
}

// Marshal implements dao.Persistent.
func (c *Configuration) Marshal() ([]byte, error) {
	return proto.Marshal(&configurationRecord{Quorum: coin.Encode(c.Quorum)})
}

// Unmarshal implements dao.Persistent.
func (c *Configuration) Unmarshal(raw []byte) error {
	var rec configurationRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	quorum, err := coin.Decode(rec.Quorum)
	if err != nil {
		return err
	}
	c.Quorum = quorum
	return nil
}

type configurationJSON struct {
	Quorum string `json:"quorum"`
}

// MarshalJSON writes the quorum in whole units.
func (c Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(configurationJSON{Quorum: coin.Format(c.Quorum)})
}

// UnmarshalJSON reads the quorum in whole units with up to 18 decimals,
// for example "500000.000000000000000001".
func (c *Configuration) UnmarshalJSON(raw []byte) error {
	var v configurationJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	quorum, err := coin.ParseUnits(v.Quorum)
	if err != nil {
		return errors.Wrap(err, "quorum")
	}
	c.Quorum = quorum
	return nil
}

// LoadConfiguration reads the governance configuration from the store.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}
