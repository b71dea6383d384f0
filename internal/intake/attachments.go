package intake

import (
	"github.com/hhsystems1/Intakeform/internal/preview"
)

// File is a raw file handed over by the user. Ownership of Data moves to the
// store on Add; callers must not modify it afterwards.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Attachment struct {
	name        string
	contentType string
	data        []byte
	handle      *preview.Handle
}

func (a *Attachment) release() {
	a.handle.Release()
	a.data = nil
}

type AttachmentInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	PreviewID   string `json:"preview_id"`
}

// AttachmentStore stages files that are not uploaded anywhere yet. It is the
// only component that allocates or releases preview handles.
type AttachmentStore struct {
	previews *preview.Registry
	items    []*Attachment
	closed   bool
}

func NewAttachmentStore(previews *preview.Registry) *AttachmentStore {
	return &AttachmentStore{previews: previews}
}

// Add appends one attachment per file. Either every file is staged or none
// is: handles allocated earlier in the same call are released on failure.
func (s *AttachmentStore) Add(files ...File) error {
	if s.closed {
		return ErrStoreClosed
	}
	added := make([]*Attachment, 0, len(files))
	for _, file := range files {
		handle, err := s.previews.Allocate(file.Name, file.ContentType, file.Data)
		if err != nil {
			for _, a := range added {
				a.release()
			}
			return err
		}
		added = append(added, &Attachment{
			name:        file.Name,
			contentType: file.ContentType,
			data:        file.Data,
			handle:      handle,
		})
	}
	s.items = append(s.items, added...)
	return nil
}

func (s *AttachmentStore) Remove(index int) error {
	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.items[index].release()
	copy(s.items[index:], s.items[index+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return nil
}

func (s *AttachmentStore) Clear() {
	for _, a := range s.items {
		a.release()
	}
	s.items = nil
}

// Close releases everything and refuses further additions.
func (s *AttachmentStore) Close() {
	s.Clear()
	s.closed = true
}

func (s *AttachmentStore) Len() int {
	return len(s.items)
}

func (s *AttachmentStore) Names() []string {
	names := make([]string, len(s.items))
	for i, a := range s.items {
		names[i] = a.name
	}
	return names
}

func (s *AttachmentStore) Attachments() []AttachmentInfo {
	out := make([]AttachmentInfo, len(s.items))
	for i, a := range s.items {
		out[i] = AttachmentInfo{
			Index:       i,
			Name:        a.name,
			ContentType: a.contentType,
			Size:        len(a.data),
			PreviewID:   a.handle.ID(),
		}
	}
	return out
}
