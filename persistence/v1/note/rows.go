package note

import (
	"encoding/json"
	"fmt"
	"time"
)

const columns = "id, title, content, images, updatedAt, createdAt"

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (Note, error) {
	var (
		n                    Note
		images               string
		updatedAt, createdAt int64
	)
	if err := s.Scan(&n.Id, &n.Title, &n.Content, &images, &updatedAt, &createdAt); err != nil {
		return Note{}, err
	}
	imgs, err := decodeImages(images)
	if err != nil {
		return Note{}, fmt.Errorf("note %d: %w", n.Id, err)
	}
	n.Images = imgs
	n.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	n.CreatedAt = time.UnixMilli(createdAt).UTC()
	return n, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(raw), nil
}

func decodeImages(raw string) ([]string, error) {
	images := []string{}
	if raw == "" {
		return images, nil
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return images, nil
}
