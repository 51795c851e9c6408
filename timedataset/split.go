package timedataset

import "time"

// SplitIndex partitions positions by a chronological cutoff. Dates strictly before the
// cutoff land in train and everything on or after the cutoff lands in test.
func SplitIndex(dates []time.Time, cutoff time.Time) ([]int, []int) {
	train := make([]int, 0, len(dates))
	test := make([]int, 0, len(dates))
	for i, d := range dates {
		if d.Before(cutoff) {
			train = append(train, i)
			continue
		}
		test = append(test, i)
	}
	return train, test
}

// Split partitions the records by date alone, independent of entity
func Split(records []Record, cutoff time.Time) ([]Record, []Record) {
	dates := make([]time.Time, len(records))
	for i, r := range records {
		dates[i] = r.Date
	}
	trainIdx, testIdx := SplitIndex(dates, cutoff)

	train := make([]Record, 0, len(trainIdx))
	for _, i := range trainIdx {
		train = append(train, records[i])
	}
	test := make([]Record, 0, len(testIdx))
	for _, i := range testIdx {
		test = append(test, records[i])
	}
	return train, test
}
