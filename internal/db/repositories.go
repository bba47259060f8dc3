package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repositories struct {
	Users        *UserRepository
	Families     *FamilyRepository
	Cycles       *CycleRepository
	DailyRecords *DailyRecordRepository
	StoolEvents  *StoolEventRepository
	Messages     *MessageRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Families:     NewFamilyRepository(database),
		Cycles:       NewCycleRepository(database),
		DailyRecords: NewDailyRecordRepository(database),
		StoolEvents:  NewStoolEventRepository(database),
		Messages:     NewMessageRepository(database),
	}
}

// lockForUpdate adds a row lock on dialects that support one. SQLite
// serialises writers at the database level instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
