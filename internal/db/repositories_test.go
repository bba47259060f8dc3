package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

var repositoryTestZone = time.FixedZone("CST", 8*60*60)

type repositoryFixture struct {
	repos    *Repositories
	userID   uint
	familyID uint
}

func newRepositoryFixture(t *testing.T) repositoryFixture {
	t.Helper()

	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "careline-repos.db"))
	repos := NewRepositories(database)

	phone := "13800001234"
	user := models.User{Phone: &phone, Nickname: "用户1234", PasswordHash: "hash"}
	require.NoError(t, repos.Users.Create(&user))

	family := models.Family{Name: models.DefaultFamilyName, InviteCode: "CL-AAAA-0001", CreatedBy: user.ID}
	_, err := repos.Families.CreateWithMember(&family, models.RolePatient, repositoryDay(2024, 1, 1))
	require.NoError(t, err)

	return repositoryFixture{repos: repos, userID: user.ID, familyID: family.ID}
}

func repositoryDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, repositoryTestZone)
}

func TestCycleRepositoryActivateKeepsSingleActiveCycle(t *testing.T) {
	fixture := newRepositoryFixture(t)
	cycles := fixture.repos.Cycles

	first := models.Cycle{FamilyID: fixture.familyID, CycleNo: 1, StartDate: repositoryDay(2024, 1, 1), LengthDays: 21}
	require.NoError(t, cycles.Activate(&first, 0))

	second := models.Cycle{FamilyID: fixture.familyID, CycleNo: 2, StartDate: repositoryDay(2024, 1, 22), LengthDays: 21}
	require.NoError(t, cycles.Activate(&second, 1))

	active, found, err := cycles.FindActive(fixture.familyID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, active.CycleNo)

	all, err := cycles.ListByFamily(fixture.familyID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].IsActive)
	assert.True(t, all[1].IsActive)

	version, err := cycles.ActiveVersion(fixture.familyID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestCycleRepositoryActivateReusesExistingNumber(t *testing.T) {
	fixture := newRepositoryFixture(t)
	cycles := fixture.repos.Cycles

	original := models.Cycle{FamilyID: fixture.familyID, CycleNo: 1, StartDate: repositoryDay(2024, 1, 1), LengthDays: 21}
	require.NoError(t, cycles.Activate(&original, 0))

	regimen := "XELOX"
	restart := models.Cycle{FamilyID: fixture.familyID, CycleNo: 1, StartDate: repositoryDay(2024, 1, 3), LengthDays: 14, Regimen: &regimen}
	require.NoError(t, cycles.Activate(&restart, 1))
	assert.Equal(t, original.ID, restart.ID)

	stored, found, err := cycles.FindByNumber(fixture.familyID, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 14, stored.LengthDays)
	require.NotNil(t, stored.Regimen)
	assert.Equal(t, "XELOX", *stored.Regimen)
	assert.True(t, stored.StartDate.Equal(repositoryDay(2024, 1, 3)))
}

func TestCycleRepositoryStaleVersionRollsBack(t *testing.T) {
	fixture := newRepositoryFixture(t)
	cycles := fixture.repos.Cycles

	first := models.Cycle{FamilyID: fixture.familyID, CycleNo: 1, StartDate: repositoryDay(2024, 1, 1), LengthDays: 21}
	require.NoError(t, cycles.Activate(&first, 0))

	stale := models.Cycle{FamilyID: fixture.familyID, CycleNo: 2, StartDate: repositoryDay(2024, 1, 22), LengthDays: 21}
	err := cycles.Activate(&stale, 0)
	require.ErrorIs(t, err, models.ErrActiveCycleVersionConflict)

	active, found, err := cycles.FindActive(fixture.familyID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, active.CycleNo)

	_, found, err = cycles.FindByNumber(fixture.familyID, 2)
	require.NoError(t, err)
	assert.False(t, found)

	require.ErrorIs(t, cycles.Deactivate(fixture.familyID, 1, 0), models.ErrActiveCycleVersionConflict)
	require.NoError(t, cycles.Deactivate(fixture.familyID, 1, 1))
	_, found, err = cycles.FindActive(fixture.familyID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDailyRecordRepositoryUpsertPassesNeighbours(t *testing.T) {
	fixture := newRepositoryFixture(t)
	records := fixture.repos.DailyRecords
	day := repositoryDay(2024, 1, 2)

	energy := 3
	_, err := records.Upsert(fixture.familyID, day.AddDate(0, 0, -1), func(existing, previous *models.DailyRecord, _ []models.StoolEvent) models.DailyRecord {
		assert.Nil(t, existing)
		assert.Nil(t, previous)
		return models.DailyRecord{Date: day.AddDate(0, 0, -1), Energy: &energy}
	})
	require.NoError(t, err)

	blood := models.StoolEvent{FamilyID: fixture.familyID, Date: day, Blood: true, RecordedAt: day.Add(9 * time.Hour)}
	require.NoError(t, fixture.repos.StoolEvents.CreateWithRollup(&blood, countStoolEvents))

	first, err := records.Upsert(fixture.familyID, day, func(existing, previous *models.DailyRecord, events []models.StoolEvent) models.DailyRecord {
		assert.Nil(t, existing)
		require.NotNil(t, previous)
		require.NotNil(t, previous.Energy)
		assert.Equal(t, 3, *previous.Energy)
		assert.Len(t, events, 1)
		return models.DailyRecord{Date: day, Energy: previous.Energy, StoolBloodCount: len(events)}
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	nausea := 2
	second, err := records.Upsert(fixture.familyID, day, func(existing, _ *models.DailyRecord, _ []models.StoolEvent) models.DailyRecord {
		require.NotNil(t, existing)
		merged := *existing
		merged.Nausea = &nausea
		return merged
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, found, err := records.FindByFamilyAndDayRange(fixture.familyID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, stored.Nausea)
	assert.Equal(t, 2, *stored.Nausea)
	assert.Equal(t, 1, stored.StoolBloodCount)

	inRange, err := records.ListByFamilyRange(fixture.familyID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)
}

func TestStoolEventRepositoryKeepsDailyCountersInSync(t *testing.T) {
	fixture := newRepositoryFixture(t)
	day := repositoryDay(2024, 1, 5)

	_, err := fixture.repos.DailyRecords.Upsert(fixture.familyID, day, func(_, _ *models.DailyRecord, _ []models.StoolEvent) models.DailyRecord {
		return models.DailyRecord{Date: day}
	})
	require.NoError(t, err)

	events := fixture.repos.StoolEvents
	first := models.StoolEvent{FamilyID: fixture.familyID, Date: day, Blood: true, Mucus: true, RecordedAt: day.Add(8 * time.Hour)}
	second := models.StoolEvent{FamilyID: fixture.familyID, Date: day, Tenesmus: true, RecordedAt: day.Add(12 * time.Hour)}
	require.NoError(t, events.CreateWithRollup(&first, countStoolEvents))
	require.NoError(t, events.CreateWithRollup(&second, countStoolEvents))

	record := loadRecordForDay(t, fixture, day)
	require.NotNil(t, record.StoolCount)
	assert.Equal(t, 2, *record.StoolCount)
	assert.Equal(t, 1, record.StoolBloodCount)
	assert.Equal(t, 1, record.StoolMucusCount)
	assert.Equal(t, 1, record.StoolTenesmusCount)

	deleted, err := events.DeleteWithRollup(fixture.familyID, first.ID, countStoolEvents)
	require.NoError(t, err)
	assert.Equal(t, first.ID, deleted.ID)

	record = loadRecordForDay(t, fixture, day)
	require.NotNil(t, record.StoolCount)
	assert.Equal(t, 1, *record.StoolCount)
	assert.Equal(t, 0, record.StoolBloodCount)
	assert.Equal(t, 1, record.StoolTenesmusCount)

	_, err = events.DeleteWithRollup(fixture.familyID+1, second.ID, countStoolEvents)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	listed, err := events.ListByFamilyRange(fixture.familyID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)
}

func TestMessageRepositorySendReplacesSendersActiveMessage(t *testing.T) {
	fixture := newRepositoryFixture(t)
	joinCaregiver(t, fixture)
	messages := fixture.repos.Messages

	require.NoError(t, messages.Send(&models.FamilyMessage{FamilyID: fixture.familyID, SenderID: fixture.userID, Content: "第一条"}))
	require.NoError(t, messages.Send(&models.FamilyMessage{FamilyID: fixture.familyID, SenderID: fixture.userID, Content: "第二条"}))

	visible, err := messages.ListActiveFromOthers(fixture.familyID, fixture.userID+1, 10)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "第二条", visible[0].Content)
	assert.Equal(t, "用户1234", visible[0].SenderNickname)

	own, err := messages.ListActiveFromOthers(fixture.familyID, fixture.userID, 10)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestFamilyRepositoryMembersAndActiveFamilies(t *testing.T) {
	fixture := newRepositoryFixture(t)
	joinCaregiver(t, fixture)
	families := fixture.repos.Families

	members, err := families.ListMembers(fixture.familyID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, models.RolePatient, members[0].Role)
	assert.Equal(t, "用户5678", members[1].Nickname)

	patients, err := families.CountMembersWithRole(fixture.familyID, models.RolePatient)
	require.NoError(t, err)
	assert.EqualValues(t, 1, patients)

	found, ok, err := families.FindByInviteCode("CL-AAAA-0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixture.familyID, found.ID)

	ids, err := families.ListIDsWithActiveCycle()
	require.NoError(t, err)
	assert.Empty(t, ids)

	cycle := models.Cycle{FamilyID: fixture.familyID, CycleNo: 1, StartDate: repositoryDay(2024, 1, 1), LengthDays: 21}
	require.NoError(t, fixture.repos.Cycles.Activate(&cycle, 0))

	ids, err = families.ListIDsWithActiveCycle()
	require.NoError(t, err)
	assert.Equal(t, []uint{fixture.familyID}, ids)
}

func joinCaregiver(t *testing.T, fixture repositoryFixture) uint {
	t.Helper()

	phone := "13800005678"
	caregiver := models.User{Phone: &phone, Nickname: "用户5678", PasswordHash: "hash"}
	require.NoError(t, fixture.repos.Users.Create(&caregiver))
	require.NoError(t, fixture.repos.Families.AddMember(&models.FamilyMember{
		UserID:   caregiver.ID,
		FamilyID: fixture.familyID,
		Role:     models.RoleCaregiver,
		JoinedAt: repositoryDay(2024, 1, 2),
	}))
	return caregiver.ID
}

func loadRecordForDay(t *testing.T, fixture repositoryFixture, day time.Time) models.DailyRecord {
	t.Helper()

	record, found, err := fixture.repos.DailyRecords.FindByFamilyAndDayRange(fixture.familyID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, found)
	return record
}

func countStoolEvents(events []models.StoolEvent) models.StoolRollup {
	rollup := models.StoolRollup{Count: len(events)}
	for _, event := range events {
		if event.Blood {
			rollup.BloodCount++
		}
		if event.Mucus {
			rollup.MucusCount++
		}
		if event.Tenesmus {
			rollup.TenesmusCount++
		}
	}
	return rollup
}
