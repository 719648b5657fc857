package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/render"
)

func (s *Server) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(s.maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// applyPost copies the posted inputs of the current step onto session.
// Booleans missing from the post are unchecked boxes. A file input without
// a new upload keeps the stored URL.
func (s *Server) applyPost(ctx context.Context, session *engine.Session, r *http.Request) error {
	view, err := render.NewView(session)
	if err != nil {
		return err
	}
	for _, field := range view.Fields {
		s.applyField(ctx, session, r, field)
	}
	return nil
}

func (s *Server) applyField(ctx context.Context, session *engine.Session, r *http.Request, field render.FieldView) {
	switch field.Kind {
	case model.FieldKindObject:
		for _, child := range field.Children {
			s.applyField(ctx, session, r, child)
		}
		return
	case model.FieldKindGroup:
		for _, member := range field.Members {
			for _, child := range member.Fields {
				s.applyField(ctx, session, r, child)
			}
		}
		return
	case model.FieldKindFile:
		header := postedFile(r, field.Path)
		if header == nil {
			return
		}
		if err := upload(ctx, session, field.Path, header); err != nil {
			log.Printf("upload %s: %v", field.Path, err)
		}
		return
	}

	raw, present := r.PostForm[field.Path]
	if !present && field.Kind != model.FieldKindBoolean && field.Kind != model.FieldKindMultiSelect {
		return
	}
	if err := session.SetText(field.Path, raw...); err != nil {
		// A resized group can drop member paths posted for the old size.
		log.Printf("apply %s: %v", field.Path, err)
	}
}

func postedFile(r *http.Request, path string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	for _, header := range r.MultipartForm.File[path] {
		if header != nil && header.Filename != "" && header.Size > 0 {
			return header
		}
	}
	return nil
}

func upload(ctx context.Context, session *engine.Session, path string, header *multipart.FileHeader) error {
	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer file.Close()

	_, err = session.Upload(ctx, path, engine.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	return err
}
