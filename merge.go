package binvec

import (
	"math"
	"time"
)

// CheckCompatibleForMerge reports whether other can be merged into ix:
// same d and metric, both trained, and a Mergeable backend that accepts
// other's backend.
func (ix *Index) CheckCompatibleForMerge(other *Index) error {
	const op = "check_compatible_for_merge"

	if err := checkMergeArgs(op, ix, other); err != nil {
		return err
	}

	unlock := lockPair(ix, other, false)
	defer unlock()

	return ix.checkCompatible(op, other)
}

func checkMergeArgs(op string, ix, other *Index) error {
	if other == nil {
		return newError(op, KindInvalidArgument, "nil index")
	}
	if other == ix {
		return newError(op, KindInvalidArgument, "cannot merge an index into itself")
	}
	return nil
}

func (ix *Index) checkCompatible(op string, other *Index) error {
	m, ok := ix.backend.(Mergeable)
	if !ok {
		return newError(op, KindNotSupported, "backend %s does not support merge", ix.backend.Name())
	}
	if ix.d != other.d {
		return newError(op, KindIncompatibleMerge, "dimension %d != %d", ix.d, other.d)
	}
	if ix.metric != other.metric {
		return newError(op, KindIncompatibleMerge, "metric %s != %s", ix.metric, other.metric)
	}
	if !ix.isTrained() || !other.isTrained() {
		return newError(op, KindIncompatibleMerge, "both indexes must be trained")
	}
	if err := m.CheckMergeable(other.backend); err != nil {
		return &OpError{Op: op, Kind: KindIncompatibleMerge, Msg: "backend", cause: err}
	}
	return nil
}

// MergeFrom moves every entry of other into ix, storing id+addID for each
// stored id. On success other is empty; on failure both indexes are
// unchanged.
//
// Shifted identifiers that are not larger than every id in ix (in
// enumeration order) require the CustomIDStore capability.
func (ix *Index) MergeFrom(other *Index, addID int64) error {
	const op = "merge_from"

	if err := checkMergeArgs(op, ix, other); err != nil {
		return err
	}

	start := time.Now()

	unlock := lockPair(ix, other, true)
	defer unlock()

	moved, err := ix.mergeFrom(op, other, addID)
	ix.metrics.RecordMerge(moved, time.Since(start), err)
	ix.logger.LogMerge(logCtx, moved, addID, err)
	return err
}

func (ix *Index) mergeFrom(op string, other *Index, addID int64) (int64, error) {
	if err := ix.checkCompatible(op, other); err != nil {
		return 0, err
	}

	var (
		srcIDs []int64
		ids    []int64
		codes  = make([]byte, 0, other.backend.Len()*ix.codeSize)
		argErr error
	)
	if err := other.backend.Scan(func(id int64, code []byte) bool {
		if (addID > 0 && id > math.MaxInt64-addID) || id+addID < 0 {
			argErr = newError(op, KindInvalidArgument, "id %d shifted by %d is out of range", id, addID)
			return false
		}
		srcIDs = append(srcIDs, id)
		ids = append(ids, id+addID)
		codes = append(codes, code...)
		return true
	}); err != nil {
		return 0, wrapBackend(op, err)
	}
	if argErr != nil {
		return 0, argErr
	}
	if len(ids) == 0 {
		return 0, nil
	}

	appendOnly := ids[0] >= ix.nextID
	maxID := ids[0]
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			appendOnly = false
		}
		maxID = max(maxID, ids[i])
	}

	store := ix.backend.Store
	if !appendOnly {
		cs, ok := ix.backend.(CustomIDStore)
		if !ok {
			return 0, newError(op, KindIncompatibleMerge, "backend %s only accepts ascending ids from %d", ix.backend.Name(), ix.nextID)
		}
		store = cs.StoreCustom
	}

	// The source is emptied first: a failed store is undone by restoring
	// the scanned entries into it, which never touches ix.
	if err := other.backend.Clear(); err != nil {
		return 0, wrapBackend(op, err)
	}
	if err := store(ids, codes); err != nil {
		if rbErr := restore(other.backend, srcIDs, codes); rbErr != nil {
			ix.logger.ErrorContext(logCtx, "merge rollback failed", "error", rbErr)
		}
		return 0, wrapBackend(op, err)
	}

	ix.nextID = max(ix.nextID, maxID+1)
	return int64(len(ids)), nil
}

// restore refills an emptied backend with its previous entries in their
// previous enumeration order.
func restore(b Backend, ids []int64, codes []byte) error {
	if cs, ok := b.(CustomIDStore); ok {
		return cs.StoreCustom(ids, codes)
	}
	return b.Store(ids, codes)
}
