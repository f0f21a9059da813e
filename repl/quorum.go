package repl

// OpReplicatedEnough is the C5 quorum evaluator: it answers, without
// blocking, whether op has reached the write concern described by w. w must
// be an int (or any Go integer type) for a numeric threshold, the string
// "majority", or any other string naming a tag rule the membership service
// tracks.
func (t *Tracker) OpReplicatedEnough(op OpTime, w interface{}) (bool, error) {
	switch v := w.(type) {
	case int:
		return t.opReplicatedEnoughNumeric(op, v), nil
	case int32:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case int64:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case int8:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case int16:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case uint:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case uint8:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case uint16:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case uint32:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case uint64:
		return t.opReplicatedEnoughNumeric(op, int(v)), nil
	case string:
		if v == "majority" {
			return t.opReplicatedEnoughNumeric(op, t.membership.MajorityCount()), nil
		}
		rules := t.membership.TagRules()
		rule, ok := rules[v]
		if !ok {
			return false, &ErrUnrecognizedWriteConcern{Mode: v}
		}
		return rule.Last.GreaterOrEqual(op), nil
	default:
		return false, &ErrInvalidWConcernType{Value: w}
	}
}

func (t *Tracker) opReplicatedEnoughNumeric(op OpTime, w int) bool {
	if w <= 1 || !t.membership.IsPrimary() {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.satisfiesNumeric(op, w)
}

// satisfiesNumeric implements the numeric majority walk of §4.4: the
// primary counts itself, so only w-1 followers need to have caught up.
// Caller holds t.mu.
func (t *Tracker) satisfiesNumeric(op OpTime, w int) bool {
	need := w - 1
	if need <= 0 {
		return true
	}
	t.progress.visit(func(_ Identity, got OpTime) {
		if need > 0 && got.GreaterOrEqual(op) {
			need--
		}
	})
	return need <= 0
}
