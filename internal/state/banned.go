package state

import "github.com/Zelldon/zdb-sub001/internal/keyformat"

// BannedInstances lists the keys of banned process instances in key order.
// Keys that are not a single long are reported in the listing errors.
func (r *Reader) BannedInstances() (Listing[int64], error) {
	out := Listing[int64]{Items: []int64{}}
	err := r.Each(ForCategory(keyformat.BannedInstance), func(e Entry) error {
		keys, err := keyLongs(longKey, e.Key)
		if err != nil {
			out.Errors = append(out.Errors, valueError(e, err))
			return nil
		}
		out.Items = append(out.Items, keys[0])
		return nil
	})
	return out, err
}

// IsBanned reports whether the process instance is banned.
func (r *Reader) IsBanned(processInstanceKey int64) (bool, error) {
	return r.exists(keyformat.NewKey(keyformat.BannedInstance).Long(processInstanceKey).Bytes())
}
