package srtb

// All lookups match the first entry whose key equals key exactly.

func (d *Document) find(key string) int {
	for i, v := range d.largeValues() {
		if v.Key == key {
			return i
		}
	}
	return -1
}

// Integrate stores payload under key, replacing the first matching entry in
// place or appending a new entry at the end.
func (d *Document) Integrate(key, payload string) {
	if d.LargeStringValuesContainer == nil {
		d.LargeStringValuesContainer = &LargeStringValuesContainer{}
	}
	if i := d.find(key); i >= 0 {
		d.LargeStringValuesContainer.Values[i].Val = payload
		return
	}
	d.LargeStringValuesContainer.Values = append(d.LargeStringValuesContainer.Values,
		LargeStringValue{Key: key, Val: payload})
}

// Extract returns the payload stored under key. ok is false when no entry
// matches.
func (d *Document) Extract(key string) (payload string, ok bool) {
	i := d.find(key)
	if i < 0 {
		return "", false
	}
	return d.LargeStringValuesContainer.Values[i].Val, true
}

// Remove deletes the entry stored under key and reports whether one existed.
func (d *Document) Remove(key string) bool {
	i := d.find(key)
	if i < 0 {
		return false
	}
	values := d.LargeStringValuesContainer.Values
	d.LargeStringValuesContainer.Values = append(values[:i], values[i+1:]...)
	return true
}

// Keys returns the keys of all large string entries in order.
func (d *Document) Keys() []string {
	values := d.largeValues()
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = v.Key
	}
	return keys
}
