package reports

import (
	"encoding/csv"
	"io"
)

// WritePendingDuesCSV prints the pending dues rows followed by bucket totals.
func WritePendingDuesCSV(w io.Writer, report *PendingDuesReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Admission ID", "Student", "Course", "Balance", "Next Due Date", "Bucket"}); err != nil {
		return err
	}
	for _, due := range report.Dues {
		nextDue := ""
		if due.NextDueDate != nil {
			nextDue = due.NextDueDate.Format("2006-01-02")
		}
		if err := writer.Write([]string{
			formatInt(due.AdmissionID),
			due.StudentName,
			due.CourseCode,
			due.Balance.String(),
			nextDue,
			due.Bucket,
		}); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Bucket", "Count", "Amount"}); err != nil {
		return err
	}
	for _, bucket := range report.Buckets {
		if err := writer.Write([]string{bucket.Bucket, formatInt(int64(bucket.Count)), bucket.Amount.String()}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
