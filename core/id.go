package core

import (
	"errors"
	"fmt"
	"strconv"
)

type (
	ID int32
)

var ErrNegativeID = errors.New("ids cannot be negative")

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts a JSON number that fits in an int32 and is not negative.
func (id *ID) UnmarshalJSON(data []byte) error {
	val, err := ParseID(string(data))
	if err != nil {
		return err
	}
	*id = val
	return nil
}

// ParseID parses a string into an ID.
func ParseID(id string) (ID, error) {
	integerID, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot parse id: %w", err)
	}
	if integerID < 0 {
		return 0, fmt.Errorf("cannot parse id: %w", ErrNegativeID)
	}
	return ID(int32(integerID)), nil
}
