package service

import "github.com/google/uuid"

func newFileID() string {
	return uuid.NewString() + ".pdf"
}
