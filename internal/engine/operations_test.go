package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func admitted(ago time.Duration, kind, status string) AdmissionRecord {
	return AdmissionRecord{ID: uuid.New(), AdmissionDate: now.Add(-ago), AdmissionType: kind, Status: status}
}

func TestAdmissionStats(t *testing.T) {
	in := []AdmissionRecord{
		admitted(time.Hour, "emergency", "active"),
		admitted(5*time.Hour, "elective", "active"),
		admitted(23*time.Hour, "Emergency", "discharged"),
		admitted(30*time.Hour, "elective", "active"),
		admitted(100*time.Hour, "emergency", "active"),
		admitted(200*time.Hour, "elective", "discharged"),
	}
	s := AdmissionStats(now, in)
	assert.Equal(t, AdmissionSummary{
		Admissions24h:     3,
		Admissions7d:      5,
		Trend24h:          2,
		CaseFindingsToday: 2,
		TotalAdmissions:   6,
	}, s)
}

func TestEmergencyLoad(t *testing.T) {
	var in []AdmissionRecord
	for i := 0; i < 13; i++ {
		status := "active"
		if i%3 == 0 {
			status = "discharged"
		}
		in = append(in, admitted(time.Hour, "emergency", status))
	}
	in = append(in, admitted(time.Hour, "elective", "active"))

	s := EmergencyLoad(in)
	assert.Equal(t, 13, s.TotalPatients)
	assert.Equal(t, 8, s.CurrentLoad)
	assert.Equal(t, 1, s.CriticalCases)
	assert.Equal(t, EmergencySummary{}, EmergencyLoad(nil))
}

func TestAverageStayDays(t *testing.T) {
	out := now
	in := []AdmissionRecord{
		{AdmissionDate: now.Add(-72 * time.Hour), DischargeDate: &out},
		{AdmissionDate: now.Add(-36 * time.Hour), DischargeDate: &out},
		{AdmissionDate: now.Add(-time.Hour)},
	}
	days, ok := AverageStayDays(in)
	require.True(t, ok)
	assert.Equal(t, 2.3, days)

	_, ok = AverageStayDays(in[2:])
	assert.False(t, ok)
}

func TestLabThroughput(t *testing.T) {
	done := func(hours float64) *time.Time {
		at := now.Add(-time.Duration(10-hours) * time.Hour)
		return &at
	}
	ordered := now.Add(-10 * time.Hour)
	in := []LabOrder{
		{Status: "completed", OrderedAt: ordered, CompletedAt: done(2), TestName: "CBC", TestIcon: "🩸"},
		{Status: "completed", OrderedAt: ordered, CompletedAt: done(3), TestName: "CBC", TestIcon: "🩸"},
		{Status: "completed", OrderedAt: ordered, TestName: "Urinalysis"},
		{Status: "pending", OrderedAt: ordered, TestName: ""},
		{Status: "in_progress", OrderedAt: ordered, TestName: "CBC"},
	}
	s := LabThroughput(in, DefaultLabTurnaroundHours)
	assert.Equal(t, 5, s.TestsToday)
	assert.Equal(t, 3, s.CompletedTests)
	assert.Equal(t, 2, s.PendingResults)
	assert.Equal(t, 2.5, s.AvgTurnaroundTime)
	require.Len(t, s.TopTests, 3)
	assert.Equal(t, TestCount{TestType: "CBC", Count: 3, Icon: "🩸"}, s.TopTests[0])
	assert.Equal(t, TestCount{TestType: "Urinalysis", Count: 1, Icon: "🧪"}, s.TopTests[1])
	assert.Equal(t, UnknownLabel, s.TopTests[2].TestType)
}

func TestLabThroughput_NoMeasurementsUsesDefault(t *testing.T) {
	s := LabThroughput([]LabOrder{{Status: "pending"}}, 4.5)
	assert.Equal(t, 4.5, s.AvgTurnaroundTime)
	assert.Equal(t, 1, s.PendingResults)

	empty := LabThroughput(nil, DefaultLabTurnaroundHours)
	assert.NotNil(t, empty.TopTests)
	assert.Equal(t, DefaultLabTurnaroundHours, empty.AvgTurnaroundTime)
}

func TestDeviceUtilization(t *testing.T) {
	bed := "P-001"
	in := []Equipment{
		{ID: uuid.New(), Type: "ventilator", Status: "in-use", PatientNumber: &bed, Location: "ICU-1"},
		{ID: uuid.New(), Type: "monitor", Status: "available"},
		{ID: uuid.New(), Type: "pump", Status: "maintenance"},
		{ID: uuid.New(), Type: "defibrillator", Status: "in-use"},
		{ID: uuid.New(), Type: "monitor", Status: "retired"},
		{ID: uuid.New(), Type: "monitor", Status: "available"},
	}
	s := DeviceUtilization(in)
	require.Len(t, s.Devices, 6)
	assert.Equal(t, "Ventilator", s.Devices[0].Type)
	assert.Equal(t, &bed, s.Devices[0].Patient)
	assert.Equal(t, "defibrillator", s.Devices[3].Type)
	assert.Equal(t, DeviceCounts{Total: 6, Active: 2, Available: 2, Maintenance: 1}, s.Summary)
	assert.Equal(t, 33.3, s.UtilizationRate)

	assert.Zero(t, DeviceUtilization(nil).UtilizationRate)
}

func TestStaffAndSupplies(t *testing.T) {
	ratios := []StaffRatio{{Ratio: 1.5}, {Ratio: 5.3}, {Ratio: 0}, {Ratio: 4.5}}
	assert.Equal(t, 3.8, StaffRatioAverage(ratios))
	assert.Zero(t, StaffRatioAverage(nil))

	supplies := []SupplyLevel{{Status: "good"}, {Status: "low"}, {Status: "LOW"}, {Status: "critical"}}
	assert.Equal(t, 2, CountLowSupplies(supplies))
}

func TestComposeKPIs(t *testing.T) {
	base := DefaultKPIBaseline()
	assert.Equal(t, base, ComposeKPIs(nil, base))

	k := ComposeKPIs([]HospitalMetricSample{
		{AvgLengthOfStay: 4, ReadmissionRate: 7, MortalityRate: 1.5, InfectionRate: 1},
		{AvgLengthOfStay: 5, ReadmissionRate: 8, MortalityRate: 2, InfectionRate: 1.5},
	}, base)
	assert.Equal(t, 4.5, k.AvgLengthOfStay)
	assert.Equal(t, 7.5, k.ReadmissionRate)
	assert.Equal(t, 1.8, k.MortalityRate)
	assert.Equal(t, 1.3, k.InfectionRate)
	assert.Equal(t, base.LabTurnaroundTime, k.LabTurnaroundTime)
	assert.Equal(t, 94.8, k.SurgerySuccessRate)
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "Just now", FormatTimeAgo(now, now.Add(-30*time.Second)))
	assert.Equal(t, "5 min ago", FormatTimeAgo(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "3 hr ago", FormatTimeAgo(now, now.Add(-3*time.Hour-10*time.Minute)))
	assert.Equal(t, "1 day ago", FormatTimeAgo(now, now.Add(-30*time.Hour)))
	assert.Equal(t, "4 days ago", FormatTimeAgo(now, now.Add(-100*time.Hour)))
}

func TestPatientFormatting(t *testing.T) {
	assert.Equal(t, "Jane Wanjiru", FullName("Jane", "Wanjiru"))
	assert.Equal(t, "Jane", FullName("Jane", ""))
	assert.Equal(t, "Patient JW", PatientInitials("Jane", "Wanjiru"))
	assert.Equal(t, "Patient É", PatientInitials("Émile", ""))

	dob := time.Date(1990, 5, 11, 0, 0, 0, 0, time.UTC)
	age := AgeYears(now, &dob)
	require.NotNil(t, age)
	assert.Equal(t, 35, *age)
	assert.Nil(t, AgeYears(now, nil))

	bp := BloodPressure(&VitalReading{BPSystolic: f(120), BPDiastolic: f(80)})
	require.NotNil(t, bp)
	assert.Equal(t, "120/80", *bp)
	assert.Nil(t, BloodPressure(&VitalReading{BPSystolic: f(120)}))
}
