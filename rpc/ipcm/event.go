package ipcm

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// UpdateMappingEvent represents "UpdateMapping" event emitted by the
// contract. Replaying these events for a token in emission order
// reconstructs the full CID history of that token: each OldCID matches the
// previous event's NewCID and the last NewCID matches the current mapping.
type UpdateMappingEvent struct {
	TokenID string
	OldCID  string
	NewCID  string
	Caller  util.Uint160
}

// TransferOwnershipEvent represents "TransferOwnership" event emitted by the
// contract.
type TransferOwnershipEvent struct {
	OldOwner util.Uint160
	NewOwner util.Uint160
}

// UpdateMappingEventsFromApplicationLog retrieves all emitted events with
// "UpdateMapping" name from the provided application log.
func UpdateMappingEventsFromApplicationLog(log *result.ApplicationLog) ([]*UpdateMappingEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UpdateMappingEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "UpdateMapping" {
				continue
			}
			event := new(UpdateMappingEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("deserialize UpdateMappingEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// TransferOwnershipEventsFromApplicationLog retrieves all emitted events with
// "TransferOwnership" name from the provided application log.
func TransferOwnershipEventsFromApplicationLog(log *result.ApplicationLog) ([]*TransferOwnershipEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*TransferOwnershipEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "TransferOwnership" {
				continue
			}
			event := new(TransferOwnershipEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("deserialize TransferOwnershipEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided stackitem.Array to UpdateMappingEvent or
// returns an error if it's not possible to do so.
func (e *UpdateMappingEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	if e.TokenID, err = itemToString(arr[0]); err != nil {
		return fmt.Errorf("field TokenID: %w", err)
	}
	if e.OldCID, err = itemToString(arr[1]); err != nil {
		return fmt.Errorf("field OldCID: %w", err)
	}
	if e.NewCID, err = itemToString(arr[2]); err != nil {
		return fmt.Errorf("field NewCID: %w", err)
	}
	if e.Caller, err = itemToUint160(arr[3]); err != nil {
		return fmt.Errorf("field Caller: %w", err)
	}

	return nil
}

// FromStackItem converts provided stackitem.Array to TransferOwnershipEvent
// or returns an error if it's not possible to do so.
func (e *TransferOwnershipEvent) FromStackItem(item *stackitem.Array) error {
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
	if e.OldOwner, err = itemToUint160(arr[0]); err != nil {
		return fmt.Errorf("field OldOwner: %w", err)
	}
	if e.NewOwner, err = itemToUint160(arr[1]); err != nil {
		return fmt.Errorf("field NewOwner: %w", err)
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
