// Package export writes calendar views to spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/model"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var calendarColumns = []string{"Início", "Fim", "Paciente", "Tipo", "Status", "Link"}

var statusLabels = map[model.Status]string{
	model.StatusPending:   "Pendente",
	model.StatusPaid:      "Pago",
	model.StatusCompleted: "Concluído",
	model.StatusCancelled: "Cancelado",
	model.StatusRefunded:  "Reembolsado",
}

// CalendarWorkbook writes one sheet per day with that day's events in agenda order.
func CalendarWorkbook(out io.Writer, engine *calendar.Engine, days []time.Time, events []model.ScheduledEvent) error {
	w := NewWriter()
	defer w.Close()

	if len(days) == 0 {
		return fmt.Errorf("no days to export")
	}
	for _, day := range days {
		if err := w.AddSheet(SheetName(day)); err != nil {
			return err
		}
		if err := w.WriteHeader(calendarColumns); err != nil {
			return err
		}
		for _, ev := range engine.Agenda(day, events) {
			if err := w.WriteRow(eventRow(ev, engine.Config().Location)); err != nil {
				return err
			}
		}
	}
	return w.Save(out)
}

// SheetName labels a day sheet, e.g. "Quarta-feira 14-01-2026".
func SheetName(day time.Time) string {
	return fmt.Sprintf("%s %s", availability.DayOfDate(day).Label(), day.Format("02-01-2006"))
}

func eventRow(ev model.ScheduledEvent, loc *time.Location) []any {
	if loc == nil {
		loc = time.Local
	}
	kind, patient := "Consulta", ev.PatientName
	if ev.IsManualBlock() {
		kind, patient = "Bloqueio", ""
	}
	status, ok := statusLabels[ev.Status]
	if !ok {
		status = string(ev.Status)
	}
	return []any{
		ev.StartAt.In(loc).Format("15:04"),
		ev.EndAt.In(loc).Format("15:04"),
		patient,
		kind,
		status,
		ev.MeetLink(),
	}
}
