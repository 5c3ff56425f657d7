package app

import (
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/repos"
)

type Repos struct {
	User           repos.UserRepo
	RevokedToken   repos.RevokedTokenRepo
	Group          repos.GroupRepo
	Library        repos.LibraryRepo
	Collection     repos.CollectionRepo
	Item           repos.ItemRepo
	Attachment     repos.AttachmentRepo
	AttachmentType repos.AttachmentTypeRepo
	Note           repos.NoteRepo
	Tag            repos.TagRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		RevokedToken:   repos.NewRevokedTokenRepo(db, log),
		Group:          repos.NewGroupRepo(db, log),
		Library:        repos.NewLibraryRepo(db, log),
		Collection:     repos.NewCollectionRepo(db, log),
		Item:           repos.NewItemRepo(db, log),
		Attachment:     repos.NewAttachmentRepo(db, log),
		AttachmentType: repos.NewAttachmentTypeRepo(db, log),
		Note:           repos.NewNoteRepo(db, log),
		Tag:            repos.NewTagRepo(db, log),
	}
}
