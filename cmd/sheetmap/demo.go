package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/models"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/schema"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/store"
	"github.com/ukaji3/sheetmap-go/pkg/sheetmap/style"
)

type course struct {
	Name      string  `sheet:"Course,width=18"`
	StudentID int     `sheet:"Student Id"`
	Credits   float64 `sheet:"Credits,type=decimal"`
}

func (course) SheetName() string { return "Course" }

type student struct {
	ID      int       `sheet:"Id,key,width=8"`
	Name    string    `sheet:"Name,width=20"`
	Score   float64   `sheet:"Score,type=percentage" rules:"style=honors comment=atRisk status=passing"`
	Joined  time.Time `sheet:"Joined,type=date,width=12"`
	Courses []course  `children:"ID=StudentID"`
}

func (student) SheetName() string { return "Student" }

type cover struct {
	Title     string    `sheet:"Title,width=24" style:"bold size=14"`
	Generated time.Time `sheet:"Generated,type=datetime,width=20"`
	Students  int       `sheet:"Students"`
}

func (cover) SheetName() string { return "Summary" }

var (
	demoStreaming bool
	persistKey    string
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [output.xlsx]",
		Short: "Write a sample student and course workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runDemo,
	}
	cmd.Flags().BoolVar(&demoStreaming, "streaming", false, "Emit rows forward only")
	cmd.Flags().StringVar(&persistKey, "persist", "", "Also store the workbook under this key in the configured store")
	return cmd
}

func demoRules() *schema.Registry {
	score := func(v any) float64 {
		f, _ := v.(float64)
		return f
	}
	return schema.NewRegistry().
		Style("honors", style.When(func(v any) bool { return score(v) >= 0.9 }, models.Style{Bold: true, FontColor: "#00B050"})).
		Comment("atRisk", style.CommentWhen(func(v any) bool { return score(v) < 0.5 }, "Below passing grade")).
		Status("passing", style.StatusWhen(func(v any) bool { return score(v) >= 0.5 }, models.StatusSuccess, models.StatusError))
}

func demoStudents() []student {
	return []student{
		{ID: 1, Name: "Ana", Score: 0.95, Joined: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Courses: []course{{Name: "Math", Credits: 4}, {Name: "Physics", Credits: 3}}},
		{ID: 2, Name: "Leo", Score: 0.42, Joined: time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC),
			Courses: []course{{Name: "Science", Credits: 3}}},
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.Options()
	opts.Logger = newLogger()
	opts.Resolver = schema.NewResolver(demoRules())

	exp := sheetmap.NewExport(opts)
	if demoStreaming {
		if err := exp.Streaming(); err != nil {
			return err
		}
	}
	students := demoStudents()
	if err := exp.Cover(cover{Title: "Enrollment", Generated: time.Now().UTC(), Students: len(students)}); err != nil {
		return err
	}
	if err := exp.Add(students); err != nil {
		return err
	}

	data, err := exp.Bytes()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if persistKey != "" {
		st, err := cfg.OpenStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		info, err := st.Put(cmd.Context(), persistKey, bytes.NewReader(data), store.PutOptions{
			ContentType: store.XLSXContentType,
			Metadata:    map[string]string{"sheets": strconv.Itoa(len(exp.Report().Sheets))},
		})
		if err != nil {
			return fmt.Errorf("failed to persist: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d bytes, %s)\n", info.Key, info.Size, st.Driver())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d warnings)\n", args[0], len(exp.Report().Warnings))
	return nil
}
