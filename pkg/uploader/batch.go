package uploader

import "github.com/google/uuid"

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type Item struct {
	ID     string
	File   File
	Status Status
	Result *Result
	Output string
	Error  string
}

// Batch is a single uploader run. Items keep the order the files were given in.
type Batch struct {
	Options Options
	Items   []*Item
}

func NewBatch(options Options, files []File) *Batch {
	items := make([]*Item, len(files))
	for i, file := range files {
		items[i] = &Item{
			ID:     uuid.NewString(),
			File:   file,
			Status: StatusQueued,
		}
	}

	return &Batch{Options: options, Items: items}
}

func (b *Batch) Count(status Status) int {
	count := 0
	for _, item := range b.Items {
		if item.Status == status {
			count++
		}
	}

	return count
}
