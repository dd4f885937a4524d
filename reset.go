package lit

// ResetMode selects how much of the index and working tree Reset touches.
type ResetMode int8

const (
	// ResetSoft moves HEAD only; the index and working tree are untouched.
	ResetSoft ResetMode = iota
	// ResetMixed moves HEAD and resets the index to match it, leaving the
	// working tree untouched.
	ResetMixed
	// ResetHard moves HEAD, resets the index, and overwrites the working
	// tree to match, discarding uncommitted changes.
	ResetHard
)

// Reset moves HEAD to rev per mode, per §4.9. ORIG_HEAD is written first so
// the reset can be undone with "reset ORIG_HEAD --hard".
func (r *Repository) Reset(rev string, mode ResetMode) error {
	target, err := r.Resolve(rev)
	if err != nil {
		return err
	}

	oldHead, err := r.Storage.HeadHash()
	if err != nil {
		return err
	}
	if !oldHead.IsZero() {
		if err := r.setOrigHead(oldHead); err != nil {
			return err
		}
	}

	if err := r.advanceHeadForce(target); err != nil {
		return err
	}
	if mode == ResetSoft {
		return nil
	}

	c, err := r.Storage.Objects.CommitObject(target)
	if err != nil {
		return err
	}

	if mode == ResetHard {
		wt, err := r.Worktree()
		if err != nil {
			return err
		}
		return wt.forceCheckoutTree(c.Tree, oldHead)
	}

	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	return wt.ReadTree(c.Tree)
}
