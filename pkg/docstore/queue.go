package docstore

import "fmt"

// Events returns the event array of a queue document, oldest first.
// A nil document or a missing or malformed field yields nil.
func Events(doc Document, field string) []any {
	if doc == nil {
		return nil
	}
	events, _ := doc[field].([]any)
	return events
}

// TrimQueue returns a copy of doc whose event array has been evicted
// oldest-first until the encoded document fits in target bytes, plus
// the number of events dropped. A document that already fits is
// returned as-is. Eviction stops once the array is empty, even if other
// fields keep the document above target.
//
// Each eviction re-encodes the whole document. Quadratic, but queue
// documents are capped at a few hundred KiB and trims are rare.
func TrimQueue(c Codec, doc Document, field string, target int) (Document, int, error) {
	data, err := c.Marshal(doc)
	if err != nil {
		return nil, 0, err
	}
	if len(data) <= target {
		return doc, 0, nil
	}

	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	events := append([]any(nil), Events(doc, field)...)

	dropped := 0
	for len(events) > 0 {
		events = events[1:]
		dropped++
		out[field] = events
		data, err = c.Marshal(out)
		if err != nil {
			return nil, dropped, err
		}
		if len(data) <= target {
			break
		}
	}
	return out, dropped, nil
}

// boundQueue encodes a queue document that is over its byte budget,
// evicting oldest events down to the trim target. If even a full trim
// cannot fit the budget (a single event bigger than the whole
// allowance, say) the queue resets to empty rather than persist an
// unbounded record. Shared by every Store implementation.
func boundQueue(opts *Options, ctr *counters, doc Document) ([]byte, error) {
	c := opts.codec()
	field := opts.queueField()
	total := len(Events(doc, field))

	trimmed, dropped, err := TrimQueue(c, doc, field, opts.trimTargetBytes())
	if err == nil {
		data, merr := c.Marshal(trimmed)
		if merr == nil && len(data) <= opts.maxQueueBytes() {
			ctr.queueTrims.Add(1)
			ctr.eventsEvicted.Add(uint64(dropped))
			return data, nil
		}
	}

	data, merr := c.Marshal(emptyQueue(field))
	if merr != nil {
		return nil, fmt.Errorf("docstore: encode empty queue: %w", merr)
	}
	ctr.queueTrims.Add(1)
	ctr.eventsEvicted.Add(uint64(total))
	return data, nil
}

func emptyQueue(field string) Document {
	return Document{field: []any{}}
}
