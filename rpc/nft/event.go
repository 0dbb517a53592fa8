package nft

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// MintEvent represents "Mint" event emitted by the contract.
type MintEvent struct {
	TokenID string
	Owner   util.Uint160
	IpcmKey string
}

// TransferEvent represents "Transfer" event emitted by the contract.
type TransferEvent struct {
	TokenID string
	From    util.Uint160
	To      util.Uint160
}

// BurnEvent represents "Burn" event emitted by the contract.
type BurnEvent struct {
	TokenID string
	Owner   util.Uint160
}

// MintEventsFromApplicationLog retrieves all emitted events with "Mint" name
// from the provided application log.
func MintEventsFromApplicationLog(log *result.ApplicationLog) ([]*MintEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*MintEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Mint" {
				continue
			}
			event := new(MintEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("deserialize MintEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// TransferEventsFromApplicationLog retrieves all emitted events with
// "Transfer" name from the provided application log.
func TransferEventsFromApplicationLog(log *result.ApplicationLog) ([]*TransferEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*TransferEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Transfer" {
				continue
			}
			event := new(TransferEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("deserialize TransferEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// BurnEventsFromApplicationLog retrieves all emitted events with "Burn" name
// from the provided application log.
func BurnEventsFromApplicationLog(log *result.ApplicationLog) ([]*BurnEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*BurnEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Burn" {
				continue
			}
			event := new(BurnEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("deserialize BurnEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided stackitem.Array to MintEvent or returns an
// error if it's not possible to do so.
func (e *MintEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	if e.TokenID, err = itemToString(arr[0]); err != nil {
		return fmt.Errorf("field TokenID: %w", err)
	}
	if e.Owner, err = itemToUint160(arr[1]); err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}
	if e.IpcmKey, err = itemToString(arr[2]); err != nil {
		return fmt.Errorf("field IpcmKey: %w", err)
	}

	return nil
}

// FromStackItem converts provided stackitem.Array to TransferEvent or
// returns an error if it's not possible to do so.
func (e *TransferEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	if e.TokenID, err = itemToString(arr[0]); err != nil {
		return fmt.Errorf("field TokenID: %w", err)
	}
	if e.From, err = itemToUint160(arr[1]); err != nil {
		return fmt.Errorf("field From: %w", err)
	}
	if e.To, err = itemToUint160(arr[2]); err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	return nil
}

// FromStackItem converts provided stackitem.Array to BurnEvent or returns an
// error if it's not possible to do so.
func (e *BurnEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	if e.TokenID, err = itemToString(arr[0]); err != nil {
		return fmt.Errorf("field TokenID: %w", err)
	}
	if e.Owner, err = itemToUint160(arr[1]); err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	return nil
}

func itemToString(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}
