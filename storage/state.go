package storage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"

	"github.com/resolverai/roast-somnia-contracts/native/registry"
	"github.com/resolverai/roast-somnia-contracts/native/rewards"
	"github.com/resolverai/roast-somnia-contracts/native/token"
)

const (
	prefixContent    = "registry/content/"
	prefixOwnerIndex = "registry/owner/"
	keyContentCount  = "registry/meta/contentCount"
	prefixReferral   = "rewards/referral/"
	prefixPayout     = "rewards/payout/"
	keyPayoutCount   = "rewards/meta/payoutCount"
	prefixAccount    = "token/account/"
	prefixAllowance  = "token/allowance/"
)

// State persists every record kind the settlement engines own on a single
// key-value Database, with JSON codecs per record. It satisfies the state
// interfaces of the registry engine, the rewards engine and the reference
// token ledger. Values are deep-copied on the way in and out via
// marshalling, so callers never alias stored records.
type State struct {
	db Database
}

// NewState wraps the supplied database.
func NewState(db Database) *State {
	return &State{db: db}
}

// Close releases the underlying database.
func (s *State) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *State) getJSON(key string, out any) (bool, error) {
	raw, err := s.db.Get([]byte(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *State) putJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(key), raw)
}

func (s *State) getCount(key string) (uint64, error) {
	raw, err := s.db.Get([]byte(key))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

func (s *State) putCount(key string, count uint64) error {
	return s.db.Put([]byte(key), []byte(strconv.FormatUint(count, 10)))
}

func addrKey(addr [20]byte) string {
	return hex.EncodeToString(addr[:])
}

// --- registry engine state ---

func (s *State) RegistryContentGet(id string) (*registry.Content, bool, error) {
	content := &registry.Content{}
	ok, err := s.getJSON(prefixContent+id, content)
	if !ok || err != nil {
		return nil, false, err
	}
	return content, true, nil
}

func (s *State) RegistryContentPut(content *registry.Content) error {
	if content == nil {
		return nil
	}
	return s.putJSON(prefixContent+content.ID, content)
}

func (s *State) RegistryOwnerIndexGet(owner [20]byte) ([]string, error) {
	var ids []string
	if _, err := s.getJSON(prefixOwnerIndex+addrKey(owner), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *State) RegistryOwnerIndexAppend(owner [20]byte, id string) error {
	ids, err := s.RegistryOwnerIndexGet(owner)
	if err != nil {
		return err
	}
	return s.putJSON(prefixOwnerIndex+addrKey(owner), append(ids, id))
}

func (s *State) RegistryContentCount() (uint64, error) {
	return s.getCount(keyContentCount)
}

func (s *State) RegistryContentSetCount(count uint64) error {
	return s.putCount(keyContentCount, count)
}

// --- rewards engine state ---

func (s *State) RewardReferralGet(user [20]byte) (*rewards.ReferralRecord, bool, error) {
	record := &rewards.ReferralRecord{}
	ok, err := s.getJSON(prefixReferral+addrKey(user), record)
	if !ok || err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *State) RewardReferralPut(record *rewards.ReferralRecord) error {
	if record == nil {
		return nil
	}
	return s.putJSON(prefixReferral+addrKey(record.User), record)
}

func (s *State) RewardPayoutGet(index uint64) (*rewards.PayoutRecord, bool, error) {
	record := &rewards.PayoutRecord{}
	ok, err := s.getJSON(prefixPayout+strconv.FormatUint(index, 10), record)
	if !ok || err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *State) RewardPayoutPut(record *rewards.PayoutRecord) error {
	if record == nil {
		return nil
	}
	return s.putJSON(prefixPayout+strconv.FormatUint(record.Index, 10), record)
}

func (s *State) RewardPayoutCount() (uint64, error) {
	return s.getCount(keyPayoutCount)
}

func (s *State) RewardPayoutSetCount(count uint64) error {
	return s.putCount(keyPayoutCount, count)
}

// --- token ledger state ---

func (s *State) TokenAccountGet(addr [20]byte) (*token.Account, bool, error) {
	acct := &token.Account{}
	ok, err := s.getJSON(prefixAccount+addrKey(addr), acct)
	if !ok || err != nil {
		return nil, false, err
	}
	return acct, true, nil
}

func (s *State) TokenAccountPut(addr [20]byte, acct *token.Account) error {
	if acct == nil {
		return nil
	}
	return s.putJSON(prefixAccount+addrKey(addr), acct)
}

func allowanceKey(owner, spender [20]byte) string {
	return prefixAllowance + addrKey(owner) + "/" + addrKey(spender)
}

func (s *State) TokenAllowanceGet(owner, spender [20]byte) (*big.Int, error) {
	raw, err := s.db.Get([]byte(allowanceKey(owner, spender)))
	if errors.Is(err, ErrNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, errors.New("storage: corrupt allowance value")
	}
	return amount, nil
}

func (s *State) TokenAllowancePut(owner, spender [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return s.db.Put([]byte(allowanceKey(owner, spender)), []byte(amount.String()))
}
