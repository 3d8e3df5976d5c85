package binvec

import (
	"time"
)

// Train trains the backend on n codes. Backends without a training step
// ignore the call.
func (ix *Index) Train(n int, x []byte) error {
	const op = "train"

	ix.mu.Lock()
	defer ix.mu.Unlock()

	x, err := checkBuffer(op, n, x, ix.codeSize)
	if err != nil {
		return err
	}
	t, ok := ix.backend.(Trainer)
	if !ok || n == 0 {
		return nil
	}
	if err := t.Train(n, x); err != nil {
		err = wrapBackend(op, err)
		ix.logger.ErrorContext(logCtx, "train failed", "n", n, "error", err)
		return err
	}
	ix.logger.DebugContext(logCtx, "train completed", "n", n, "trained", t.IsTrained())
	return nil
}

// Add appends n codes with sequential identifiers starting at NextID().
func (ix *Index) Add(n int, x []byte) error {
	const op = "add"

	start := time.Now()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	err := ix.add(op, n, x)
	ix.metrics.RecordAdd(n, time.Since(start), err)
	ix.logger.LogAdd(logCtx, op, n, int64(ix.backend.Len()), err)
	return err
}

func (ix *Index) add(op string, n int, x []byte) error {
	if err := ix.checkTrained(op); err != nil {
		return err
	}
	x, err := checkBuffer(op, n, x, ix.codeSize)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = ix.nextID + int64(i)
	}
	if err := ix.backend.Store(ids, x); err != nil {
		return wrapBackend(op, err)
	}
	ix.nextID += int64(n)
	return nil
}

// AddWithIDs stores n codes under caller-chosen identifiers.
// It requires the CustomIDStore capability. Identifiers must be non-negative;
// -1 is reserved for padded result slots.
func (ix *Index) AddWithIDs(n int, x []byte, ids []int64) error {
	const op = "add_with_ids"

	start := time.Now()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	err := ix.addWithIDs(op, n, x, ids)
	ix.metrics.RecordAdd(n, time.Since(start), err)
	ix.logger.LogAdd(logCtx, op, n, int64(ix.backend.Len()), err)
	return err
}

func (ix *Index) addWithIDs(op string, n int, x []byte, ids []int64) error {
	cs, ok := ix.backend.(CustomIDStore)
	if !ok {
		return newError(op, KindNotSupported, "backend %s does not accept custom ids", ix.backend.Name())
	}
	if err := ix.checkTrained(op); err != nil {
		return err
	}
	x, err := checkBuffer(op, n, x, ix.codeSize)
	if err != nil {
		return err
	}
	if n > 0 && len(ids) < n {
		return newError(op, KindInvalidArgument, "%d ids for %d codes", len(ids), n)
	}
	if n == 0 {
		return nil
	}
	ids = ids[:n]

	maxID := int64(-1)
	for _, id := range ids {
		if id < 0 {
			return newError(op, KindInvalidArgument, "negative id %d", id)
		}
		maxID = max(maxID, id)
	}
	if err := cs.StoreCustom(ids, x); err != nil {
		return wrapBackend(op, err)
	}
	ix.nextID = max(ix.nextID, maxID+1)
	return nil
}

// SACodeSize returns the size in bytes of a standalone code.
func (ix *Index) SACodeSize() int {
	if sa, ok := ix.backend.(SACoder); ok {
		return sa.SACodeSize()
	}
	return ix.codeSize
}

// AddSACodes adds n externally encoded standalone codes. With nil ids it
// behaves like Add, otherwise like AddWithIDs.
func (ix *Index) AddSACodes(n int, codes []byte, ids []int64) error {
	const op = "add_sa_codes"

	start := time.Now()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	var err error
	if sa := ix.SACodeSize(); sa != ix.codeSize {
		err = newError(op, KindNotSupported, "backend %s stores %d-byte codes but encodes %d-byte standalone codes", ix.backend.Name(), ix.codeSize, sa)
	} else if ids == nil {
		err = ix.add(op, n, codes)
	} else {
		err = ix.addWithIDs(op, n, codes, ids)
	}
	ix.metrics.RecordAdd(n, time.Since(start), err)
	ix.logger.LogAdd(logCtx, op, n, int64(ix.backend.Len()), err)
	return err
}

// Reset removes every entry and rewinds NextID to 0.
func (ix *Index) Reset() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.backend.Clear(); err != nil {
		err = wrapBackend("reset", err)
		ix.logger.ErrorContext(logCtx, "reset failed", "error", err)
		return err
	}
	ix.nextID = 0
	ix.logger.DebugContext(logCtx, "reset completed")
	return nil
}

// RemoveIDs removes every entry selected by sel and returns how many were
// removed. It requires the Eraser capability; without it the index is left
// untouched and ErrNotSupported is returned.
func (ix *Index) RemoveIDs(sel IDSelector) (int, error) {
	const op = "remove_ids"

	start := time.Now()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed, err := ix.removeIDs(op, sel)
	ix.metrics.RecordRemove(removed, time.Since(start), err)
	ix.logger.LogRemove(logCtx, removed, err)
	return removed, err
}

func (ix *Index) removeIDs(op string, sel IDSelector) (int, error) {
	er, ok := ix.backend.(Eraser)
	if !ok {
		return 0, newError(op, KindNotSupported, "backend %s does not support removal", ix.backend.Name())
	}
	if sel == nil {
		return 0, newError(op, KindInvalidArgument, "nil selector")
	}

	var ids []int64
	if err := ix.backend.Scan(func(id int64, _ []byte) bool {
		if sel.IsMember(id) {
			ids = append(ids, id)
		}
		return true
	}); err != nil {
		return 0, wrapBackend(op, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	removed, err := er.Erase(ids)
	if err != nil {
		return 0, wrapBackend(op, err)
	}
	return removed, nil
}
