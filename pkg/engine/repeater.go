package engine

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-stepform/pkg/model"
)

// Len reports the number of member records in group.
func (s *Session) Len(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members(group))
}

// Append pushes a blank member record onto a manually sized group and returns
// its index.
func (s *Session) Append(group string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.manualRepeater(group)
	if err != nil {
		return -1, err
	}
	members := s.members(group)
	if rep.Max > 0 && len(members) >= rep.Max {
		return -1, fmt.Errorf("%w: %s max %d", ErrMaxMembers, group, rep.Max)
	}
	record, _ := s.def.BlankRecord(group)
	members = append(members, record)
	if err := setPath(s.values, group, members); err != nil {
		return -1, err
	}
	return len(members) - 1, nil
}

// Remove deletes the member at index from a manually sized group. Errors
// recorded against members are dropped since their indices shift. It fails
// with ErrUploadInFlight while any member of the group is uploading.
func (s *Session) Remove(group string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.manualRepeater(group)
	if err != nil {
		return err
	}
	members := s.members(group)
	if index < 0 || index >= len(members) {
		return fmt.Errorf("%w: %s.%d", ErrIndexOutOfRange, group, index)
	}
	if s.uploadingUnder(group + ".") {
		return fmt.Errorf("%w: %s", ErrUploadInFlight, group)
	}
	if len(members) <= rep.Min {
		return fmt.Errorf("%w: %s min %d", ErrMinMembers, group, rep.Min)
	}
	members = append(members[:index:index], members[index+1:]...)
	if err := setPath(s.values, group, members); err != nil {
		return err
	}
	s.clearErrorsUnder(group + ".")
	return nil
}

func (s *Session) manualRepeater(group string) (model.Repeater, error) {
	rep, ok := s.def.Repeater(group)
	if !ok {
		return model.Repeater{}, fmt.Errorf("%w: %s", ErrNotGroup, group)
	}
	if rep.CountDriven() {
		return model.Repeater{}, fmt.Errorf("%w: %s", ErrCountDriven, group)
	}
	return rep, nil
}

func (s *Session) members(group string) []any {
	raw, _ := getPath(s.values, group)
	members, _ := raw.([]any)
	return members
}

// resize appends blank records at the tail or truncates from the tail until
// the group length equals count.
func (s *Session) resize(rep model.Repeater, count any) error {
	n, err := model.ParseCount(count)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCount, err)
	}
	members := s.members(rep.Field)
	switch {
	case len(members) > n:
		for i := n; i < len(members); i++ {
			s.clearErrorsUnder(fmt.Sprintf("%s.%d.", rep.Field, i))
		}
		members = members[:n:n]
	case len(members) < n:
		for len(members) < n {
			record, _ := s.def.BlankRecord(rep.Field)
			members = append(members, record)
		}
	}
	if members == nil {
		members = []any{}
	}
	return setPath(s.values, rep.Field, members)
}

func (s *Session) fillMinimum(rep model.Repeater) error {
	members := s.members(rep.Field)
	for len(members) < rep.Min {
		record, _ := s.def.BlankRecord(rep.Field)
		members = append(members, record)
	}
	if members == nil {
		members = []any{}
	}
	return setPath(s.values, rep.Field, members)
}

func (s *Session) clearErrorsUnder(prefix string) {
	for path := range s.errors {
		if strings.HasPrefix(path, prefix) {
			delete(s.errors, path)
		}
	}
}

// uploadingUnder reports whether an upload is in flight below prefix.
func (s *Session) uploadingUnder(prefix string) bool {
	for path := range s.busy {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
