package database

import (
	"fmt"
	"log"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// Migrations run on every boot in debug mode; release mode requires the
	// explicit flag.
	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
		seedBadges(db)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Skill{},
		&model.Task{},
		&model.TaskLink{},
		&model.Enrollment{},
		&model.ProgressRecord{},
		&model.TaskProgress{},
		&model.StudentUpload{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Group{},
		&model.GroupMember{},
		&model.GroupInvitation{},
		&model.GroupVideo{},
	)
}

// seedBadges inserts the default badge ladder on an empty table.
func seedBadges(db *gorm.DB) {
	var count int64
	db.Model(&model.Badge{}).Count(&count)
	if count != 0 {
		return
	}

	defaults := []model.Badge{
		{Name: "First Steps", Criteria: "Complete 1 task", CriteriaKind: model.CriteriaTasksCompleted, Threshold: 1, Icon: "badge-first-steps.png"},
		{Name: "Getting Going", Criteria: "Complete 5 tasks", CriteriaKind: model.CriteriaTasksCompleted, Threshold: 5, Icon: "badge-getting-going.png"},
		{Name: "Committed", Criteria: "Complete 20 tasks", CriteriaKind: model.CriteriaTasksCompleted, Threshold: 20, Icon: "badge-committed.png"},
		{Name: "Task Master", Criteria: "Complete 50 tasks", CriteriaKind: model.CriteriaTasksCompleted, Threshold: 50, Icon: "badge-task-master.png"},
	}
	for _, b := range defaults {
		db.Create(&b)
	}
}
