package app

import (
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/repos"
)

type Repos struct {
	ContentRecord repos.ContentRecordRepo
	TitleHeader   repos.TitleHeaderRepo
	Episode       repos.EpisodeRepo
	ScanEntry     repos.ScanEntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ContentRecord: repos.NewContentRecordRepo(db, log),
		TitleHeader:   repos.NewTitleHeaderRepo(db, log),
		Episode:       repos.NewEpisodeRepo(db, log),
		ScanEntry:     repos.NewScanEntryRepo(db, log),
	}
}
