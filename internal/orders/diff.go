package orders

import "catering/internal/models"

// ItemDiff is the set of line writes that turns a stored order into the
// edited one.
type ItemDiff struct {
	Delete []models.OrderItem `json:"delete"`
	Update []models.OrderItem `json:"update"`
	Insert []models.OrderItem `json:"insert"`
}

// Empty reports whether the diff has nothing to write
func (d ItemDiff) Empty() bool {
	return len(d.Delete) == 0 && len(d.Update) == 0 && len(d.Insert) == 0
}

// DiffItems compares stored lines with incoming ones by line key. Stored
// lines missing from incoming are deleted, incoming lines missing from stored
// are inserted, and lines on both sides are updated only when their quantity,
// prices or instructions differ. Updated lines carry the stored row id.
//
// If stored holds two rows with one key, the later ones are deleted.
func DiffItems(stored, incoming []models.OrderItem) ItemDiff {
	var diff ItemDiff

	byKey := make(map[models.LineKey]models.OrderItem, len(stored))
	for _, item := range stored {
		key := item.Key()
		if _, dup := byKey[key]; dup {
			diff.Delete = append(diff.Delete, item)
			continue
		}
		byKey[key] = item
	}

	wanted := make(map[models.LineKey]bool, len(incoming))
	for _, item := range incoming {
		key := item.Key()
		wanted[key] = true

		old, ok := byKey[key]
		if !ok {
			item.ID = 0
			diff.Insert = append(diff.Insert, item)
			continue
		}
		if old.SameContent(&item) {
			continue
		}
		item.ID = old.ID
		item.OrderID = old.OrderID
		diff.Update = append(diff.Update, item)
	}

	for _, item := range stored {
		key := item.Key()
		if byKey[key].ID != item.ID {
			continue // duplicate, already deleted
		}
		if !wanted[key] {
			diff.Delete = append(diff.Delete, item)
		}
	}
	return diff
}
