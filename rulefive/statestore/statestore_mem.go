package statestore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemStateStore struct {
	Data *expirable.LRU[string, FactRecord]

	// wall clock, swappable in tests
	Now func() time.Time

	seenLock sync.Mutex
}

func NewMemStateStore(capacity int) *MemStateStore {
	return &MemStateStore{
		Data: expirable.NewLRU[string, FactRecord](capacity, nil, RetentionPeriod),
		Now:  time.Now,
	}
}

func memStateKey(fact, postID string) string {
	return fact + "/" + postID
}

func (s *MemStateStore) get(fact, postID string) (*FactRecord, bool) {
	rec, ok := s.Data.Get(memStateKey(fact, postID))
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (s *MemStateStore) mark(fact, postID, commentID string) {
	s.Data.Add(memStateKey(fact, postID), FactRecord{At: s.Now().UTC(), CommentID: commentID})
}

func (s *MemStateStore) IsSeen(ctx context.Context, postID string) (bool, error) {
	_, ok := s.get(factSeen, postID)
	return ok, nil
}

func (s *MemStateStore) MarkSeen(ctx context.Context, postID string) error {
	s.mark(factSeen, postID, "")
	return nil
}

func (s *MemStateStore) MarkSeenOnce(ctx context.Context, postID string) (bool, error) {
	s.seenLock.Lock()
	defer s.seenLock.Unlock()
	if _, ok := s.get(factSeen, postID); ok {
		return false, nil
	}
	s.mark(factSeen, postID, "")
	return true, nil
}

func (s *MemStateStore) IsWarned(ctx context.Context, postID string) (bool, error) {
	_, ok := s.get(factWarned, postID)
	return ok, nil
}

func (s *MemStateStore) GetWarned(ctx context.Context, postID string) (*FactRecord, error) {
	rec, _ := s.get(factWarned, postID)
	return rec, nil
}

func (s *MemStateStore) MarkWarned(ctx context.Context, postID, commentID string) error {
	s.mark(factWarned, postID, commentID)
	return nil
}

func (s *MemStateStore) IsRemovedByBot(ctx context.Context, postID string) (bool, error) {
	_, ok := s.get(factRemoved, postID)
	return ok, nil
}

func (s *MemStateStore) MarkRemoved(ctx context.Context, postID, commentID string) error {
	s.mark(factRemoved, postID, commentID)
	return nil
}

func (s *MemStateStore) WasRecentlyApproved(ctx context.Context, postID string) (bool, error) {
	rec, ok := s.get(factApproved, postID)
	if !ok {
		return false, nil
	}
	return s.Now().UTC().Sub(rec.At) <= ApprovalWindow, nil
}

func (s *MemStateStore) MarkApproved(ctx context.Context, postID string) error {
	s.mark(factApproved, postID, "")
	return nil
}

func (s *MemStateStore) GetState(ctx context.Context, postID string) (*PostState, error) {
	st := &PostState{PostID: postID}
	if _, ok := s.get(factSeen, postID); ok {
		st.Processed = true
	}
	if rec, ok := s.get(factWarned, postID); ok {
		st.Warned = true
		st.WarnedAt = &rec.At
		st.WarningCommentID = rec.CommentID
	}
	if rec, ok := s.get(factRemoved, postID); ok {
		st.Removed = true
		st.RemovedAt = &rec.At
		st.RemovalCommentID = rec.CommentID
	}
	if rec, ok := s.get(factApproved, postID); ok {
		st.Approved = true
		st.ApprovedAt = &rec.At
	}
	return st, nil
}

func (s *MemStateStore) ClearState(ctx context.Context, postID string) error {
	for _, fact := range []string{factSeen, factWarned, factRemoved, factApproved} {
		s.Data.Remove(memStateKey(fact, postID))
	}
	return nil
}

var _ StateStore = (*MemStateStore)(nil)
