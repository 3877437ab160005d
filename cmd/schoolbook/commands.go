// ABOUTME: Subcommand handlers for the schoolbook CLI
// ABOUTME: Parses --name value arguments, calls the services and prints tables

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/schoolbook/internal/admin"
	"github.com/2389/schoolbook/internal/app"
	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/classlog"
	"github.com/2389/schoolbook/internal/records"
	"github.com/2389/schoolbook/internal/students"
)

// cli carries the app and the terminal streams through the handlers.
type cli struct {
	app *app.App
	in  io.Reader
	out io.Writer

	reader *bufio.Reader
}

// options holds parsed --name value pairs
type options map[string]string

// parseFlags splits args into options and positional arguments. Names in
// boolFlags take no value. Both "--name value" and "--name=value" work.
func parseFlags(args []string, boolFlags ...string) (options, []string, error) {
	opts := options{}
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			positional = append(positional, arg)
			continue
		}
		name := strings.TrimPrefix(arg, "--")
		if k, v, ok := strings.Cut(name, "="); ok {
			opts[k] = v
			continue
		}
		if slices.Contains(boolFlags, name) {
			opts[name] = "true"
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag --%s needs a value", name)
		}
		opts[name] = args[i+1]
		i++
	}
	return opts, positional, nil
}

func (o options) has(name string) bool {
	_, ok := o[name]
	return ok
}

// or returns the option value, or fallback when the flag was not given.
func (o options) or(name, fallback string) string {
	if v, ok := o[name]; ok {
		return v
	}
	return fallback
}

// secret returns given, or prompts for it without echo on a terminal.
func (c *cli) secret(prompt, given string) (string, error) {
	if given != "" {
		return given, nil
	}

	fmt.Fprint(c.out, prompt)
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(prompt, ": "), err)
		}
		return string(b), nil
	}

	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	fmt.Fprintln(c.out)
	return strings.TrimSpace(line), nil
}

func (c *cli) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(c.out, "✓ "+format+"\n", args...)
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

func (c *cli) heading(title string) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(c.out)
	cyan.Fprintf(c.out, "  %s\n", title)
	cyan.Fprintf(c.out, "  %s\n", strings.Repeat("-", len(title)))
}

func (c *cli) cmdSetup(ctx context.Context, args []string) error {
	opts, _, err := parseFlags(args)
	if err != nil {
		return err
	}

	pin, err := c.secret("Headmaster PIN: ", opts["pin"])
	if err != nil {
		return err
	}

	p, err := c.app.Auth.Setup(ctx, auth.SetupRequest{
		SchoolName:     opts["school"],
		AccessCode:     opts["code"],
		HeadmasterName: opts["name"],
		Email:          opts["email"],
		Pin:            pin,
		Contact:        opts["contact"],
	})
	if err != nil {
		return fmt.Errorf("setting up school: %w", err)
	}

	c.success("School %q set up; signed in as %s", opts["school"], p.Name())
	return nil
}

func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	opts, _, err := parseFlags(args)
	if err != nil {
		return err
	}

	gate, err := c.app.Auth.Discover(ctx, opts["code"])
	if err != nil {
		return err
	}

	role := auth.Role(opts.or("role", string(auth.RoleStaff)))
	prompt := "PIN: "
	if role == auth.RoleStudent {
		prompt = "Password: "
	}
	secret, err := c.secret(prompt, opts["secret"])
	if err != nil {
		return err
	}

	p, err := gate.Login(ctx, auth.Credentials{
		Role:       role,
		Identifier: opts["id"],
		Secret:     secret,
	})
	if err != nil {
		return err
	}

	c.success("Signed in to %s as %s (%s)", gate.School().Name, p.Name(), p.Role)
	return nil
}

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	opts, _, err := parseFlags(args)
	if err != nil {
		return err
	}

	gate, err := c.app.Auth.Discover(ctx, opts["code"])
	if err != nil {
		return err
	}

	pin, err := c.secret("Choose a PIN: ", opts["pin"])
	if err != nil {
		return err
	}

	t, err := gate.RegisterStaff(ctx, auth.Registration{
		Name:        opts["name"],
		Email:       opts["email"],
		Designation: opts["designation"],
		Contact:     opts["contact"],
		Pin:         pin,
	})
	if err != nil {
		return err
	}

	c.success("Registered %s at %s; waiting for headmaster approval", t.Email, gate.School().Name)
	return nil
}

func (c *cli) cmdLogout(ctx context.Context, _ []string) error {
	if err := c.app.Auth.Logout(ctx); err != nil {
		return err
	}
	c.success("Signed out")
	return nil
}

func (c *cli) cmdWhoami(ctx context.Context, _ []string) error {
	p := auth.FromContext(ctx)
	if p == nil {
		fmt.Fprintln(c.out, "Not signed in")
		return nil
	}

	c.heading("Identity")
	fmt.Fprintf(c.out, "  ID:          %s\n", p.ID())
	fmt.Fprintf(c.out, "  Name:        %s\n", p.Name())
	fmt.Fprintf(c.out, "  Role:        %s\n", p.Role)
	switch {
	case p.IsStaff():
		fmt.Fprintf(c.out, "  Email:       %s\n", p.Teacher.Email)
		fmt.Fprintf(c.out, "  Designation: %s\n", p.Teacher.Designation)
		if p.IsHeadmaster() {
			color.New(color.FgGreen).Fprintln(c.out, "  Headmaster:  yes")
		}
	case p.IsStudent():
		fmt.Fprintf(c.out, "  Roll:        %s\n", p.Student.RollNumber)
		fmt.Fprintf(c.out, "  Class:       %s %s\n", p.Student.Class, p.Student.Section)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) cmdSchool(ctx context.Context, _ []string) error {
	info, err := c.app.Admin.SchoolProfile(ctx)
	if err != nil {
		return err
	}

	c.heading("School")
	fmt.Fprintf(c.out, "  Name:        %s\n", info.Name)
	fmt.Fprintf(c.out, "  Access code: %s\n", info.AccessCode)
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) cmdTeachers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"approved"}
	}

	switch args[0] {
	case "pending", "approved":
		list := c.app.Admin.Approved
		title := "Approved Teachers"
		if args[0] == "pending" {
			list = c.app.Admin.Pending
			title = "Pending Registrations"
		}
		teachers, err := list(ctx)
		if err != nil {
			return err
		}
		return c.printTeachers(title, teachers)
	case "approve", "reject":
		if len(args) < 2 {
			return fmt.Errorf("usage: teachers %s <id>", args[0])
		}
		if args[0] == "approve" {
			if err := c.app.Admin.Approve(ctx, args[1]); err != nil {
				return err
			}
			c.success("Approved %s", args[1])
			return nil
		}
		if err := c.app.Admin.Reject(ctx, args[1]); err != nil {
			return err
		}
		c.success("Rejected %s", args[1])
		return nil
	case "save":
		opts, _, err := parseFlags(args[1:])
		if err != nil {
			return err
		}
		t, err := c.app.Admin.SaveTeacher(ctx, admin.TeacherInput{
			ID:          opts["id"],
			Name:        opts["name"],
			Email:       opts["email"],
			Designation: opts["designation"],
			Contact:     opts["contact"],
			Pin:         opts["pin"],
		})
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Fprintf(c.out, "No teacher with id %s; nothing saved\n", opts["id"])
			return nil
		}
		c.success("Saved teacher %s (%s)", t.Name, t.ID)
		return nil
	default:
		return fmt.Errorf("unknown teachers command: %s (use pending, approved, approve, reject, save)", args[0])
	}
}

func (c *cli) printTeachers(title string, teachers []records.Teacher) error {
	c.heading(title)
	if len(teachers) == 0 {
		fmt.Fprintln(c.out, "  (none)")
		fmt.Fprintln(c.out)
		return nil
	}

	w := c.table()
	fmt.Fprintln(w, "  ID\tNAME\tEMAIL\tDESIGNATION\tSTATUS")
	fmt.Fprintln(w, "  --\t----\t-----\t-----------\t------")
	for _, t := range teachers {
		name := t.Name
		if t.IsHeadmaster {
			name += " *"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", t.ID, name, t.Email, t.Designation, t.Status)
	}
	w.Flush()
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) cmdStudents(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	opts, positional, err := parseFlags(args[1:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		list, err := c.app.Students.List(ctx, records.ClassName(opts["class"]), opts["section"])
		if err != nil {
			return err
		}
		return c.printStudents("Students", list)
	case "search":
		if len(positional) == 0 {
			return fmt.Errorf("usage: students search <query>")
		}
		list, err := c.app.Students.Search(ctx, strings.Join(positional, " "))
		if err != nil {
			return err
		}
		return c.printStudents("Search Results", list)
	case "show":
		if len(positional) == 0 {
			return fmt.Errorf("usage: students show <id>")
		}
		st, err := c.app.Students.Get(ctx, positional[0])
		if err != nil {
			return err
		}
		c.heading("Student")
		fmt.Fprintf(c.out, "  ID:      %s\n", st.ID)
		fmt.Fprintf(c.out, "  Name:    %s\n", st.Name)
		fmt.Fprintf(c.out, "  Roll:    %s\n", st.RollNumber)
		fmt.Fprintf(c.out, "  Class:   %s %s\n", st.Class, st.Section)
		fmt.Fprintf(c.out, "  Father:  %s\n", st.FatherName)
		fmt.Fprintf(c.out, "  Mobile:  %s\n", st.ParentMobile)
		if st.Photo != "" {
			fmt.Fprintf(c.out, "  Photo:   %s\n", summarizePhoto(st.Photo))
		}
		fmt.Fprintln(c.out)
		return nil
	case "add":
		st, err := c.app.Students.Create(ctx, studentInput(opts, records.Student{}))
		if err != nil {
			return err
		}
		c.success("Enrolled %s (%s)", st.Name, st.ID)
		return nil
	case "edit":
		if len(positional) == 0 {
			return fmt.Errorf("usage: students edit <id> [--name N] [--roll R] ...")
		}
		current, err := c.app.Students.Get(ctx, positional[0])
		if err != nil {
			return err
		}
		st, err := c.app.Students.Update(ctx, current.ID, studentInput(opts, *current))
		if err != nil {
			return err
		}
		if st != nil {
			c.success("Updated %s", st.Name)
		}
		return nil
	case "delete":
		if len(positional) == 0 {
			return fmt.Errorf("usage: students delete <id>")
		}
		if err := c.app.Students.Delete(ctx, positional[0]); err != nil {
			return err
		}
		c.success("Deleted %s", positional[0])
		return nil
	default:
		return fmt.Errorf("unknown students command: %s (use list, show, search, add, edit, delete)", args[0])
	}
}

// studentInput overlays the given flags onto base.
func studentInput(opts options, base records.Student) students.Input {
	return students.Input{
		Name:         opts.or("name", base.Name),
		RollNumber:   opts.or("roll", base.RollNumber),
		FatherName:   opts.or("father", base.FatherName),
		ParentMobile: opts.or("mobile", base.ParentMobile),
		Class:        records.ClassName(opts.or("class", string(base.Class))),
		Section:      opts.or("section", base.Section),
		Password:     opts["password"],
		Photo:        opts["photo"],
	}
}

func summarizePhoto(photo string) string {
	if strings.HasPrefix(photo, "data:") {
		mime, _, _ := strings.Cut(strings.TrimPrefix(photo, "data:"), ";")
		return fmt.Sprintf("embedded %s (%d bytes encoded)", mime, len(photo))
	}
	return photo
}

func (c *cli) printStudents(title string, list []records.Student) error {
	c.heading(title)
	if len(list) == 0 {
		fmt.Fprintln(c.out, "  (none)")
		fmt.Fprintln(c.out)
		return nil
	}

	w := c.table()
	fmt.Fprintln(w, "  ID\tROLL\tNAME\tCLASS\tSECTION\tPARENT MOBILE")
	fmt.Fprintln(w, "  --\t----\t----\t-----\t-------\t-------------")
	for _, st := range list {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n", st.ID, st.RollNumber, st.Name, st.Class, st.Section, st.ParentMobile)
	}
	w.Flush()
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) cmdAttendance(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: attendance toggle|roster|history")
	}
	opts, positional, err := parseFlags(args[1:])
	if err != nil {
		return err
	}
	date := opts.or("date", c.app.Attendance.Today())

	switch args[0] {
	case "toggle":
		if len(positional) == 0 {
			return fmt.Errorf("usage: attendance toggle <student-id> [--date YYYY-MM-DD]")
		}
		present, err := c.app.Attendance.Toggle(ctx, positional[0], date)
		if err != nil {
			return err
		}
		state := "absent"
		if present {
			state = "present"
		}
		c.success("%s marked %s on %s", positional[0], state, date)
		return nil
	case "roster":
		roster, err := c.app.Attendance.Roster(ctx, records.ClassName(opts["class"]), opts["section"], date)
		if err != nil {
			return err
		}
		c.heading(fmt.Sprintf("Attendance %s %s on %s", opts["class"], opts["section"], date))
		w := c.table()
		fmt.Fprintln(w, "  ROLL\tNAME\tPRESENT")
		fmt.Fprintln(w, "  ----\t----\t-------")
		for _, e := range roster {
			mark := "no"
			if e.Present {
				mark = color.GreenString("yes")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Student.RollNumber, e.Student.Name, mark)
		}
		w.Flush()
		fmt.Fprintln(c.out)
		return nil
	case "history":
		id := ""
		if len(positional) > 0 {
			id = positional[0]
		} else if p := auth.FromContext(ctx); p != nil && p.IsStudent() {
			id = p.ID()
		}
		if id == "" {
			return fmt.Errorf("usage: attendance history <student-id>")
		}
		days, err := c.app.Attendance.History(ctx, id)
		if err != nil {
			return err
		}
		c.heading("Days Present")
		for _, r := range days {
			fmt.Fprintf(c.out, "  %s\n", r.Date)
		}
		fmt.Fprintf(c.out, "  total: %d\n\n", len(days))
		return nil
	default:
		return fmt.Errorf("unknown attendance command: %s (use toggle, roster, history)", args[0])
	}
}

func (c *cli) cmdLogs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	opts, _, err := parseFlags(args[1:], "html")
	if err != nil {
		return err
	}

	switch args[0] {
	case "post":
		log, err := c.app.ClassLogs.Post(ctx, classlog.Input{
			Date:          opts.or("date", c.app.Attendance.Today()),
			Class:         records.ClassName(opts["class"]),
			Section:       opts["section"],
			Subject:       opts["subject"],
			LessonSummary: opts["summary"],
			Homework:      opts["homework"],
		})
		if err != nil {
			return err
		}
		c.success("Posted %s log for %s %s", log.Subject, log.Class, log.Section)
		return nil
	case "list":
		logs, err := c.app.ClassLogs.Visible(ctx)
		if err != nil {
			return err
		}
		c.heading("Class Logs")
		yellow := color.New(color.FgYellow)
		for _, l := range logs {
			yellow.Fprintf(c.out, "  %s  %s %s  %s\n", l.Date, l.Class, l.Section, l.Subject)
			summary, homework := l.LessonSummary, l.Homework
			if opts.has("html") {
				r, err := classlog.RenderHTML(l)
				if err != nil {
					return err
				}
				summary, homework = r.LessonSummary, r.Homework
			}
			fmt.Fprintf(c.out, "    %s\n", indent(summary))
			if homework != "" {
				fmt.Fprintf(c.out, "    Homework: %s\n", indent(homework))
			}
		}
		fmt.Fprintln(c.out)
		return nil
	default:
		return fmt.Errorf("unknown logs command: %s (use post, list)", args[0])
	}
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n    ")
}

func (c *cli) cmdChat(ctx context.Context, args []string) error {
	me, err := auth.RequireStudent(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"peers"}
	}

	switch args[0] {
	case "peers":
		peers, err := c.app.Chat.ClassmatesOf(ctx, *me)
		if err != nil {
			return err
		}
		return c.printStudents("Classmates", peers)
	case "thread":
		if len(args) < 2 {
			return fmt.Errorf("usage: chat thread <student-id>")
		}
		thread, err := c.app.Chat.ThreadBetween(ctx, me.ID, args[1])
		if err != nil {
			return err
		}
		c.heading("Conversation")
		for _, m := range thread {
			who := args[1]
			if m.SenderID == me.ID {
				who = "me"
			}
			at := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
			fmt.Fprintf(c.out, "  %s %s: %s\n", color.HiBlackString(at), who, m.Text)
		}
		fmt.Fprintln(c.out)
		return nil
	case "send":
		if len(args) < 3 {
			return fmt.Errorf("usage: chat send <student-id> <text>")
		}
		_, sent, err := c.app.Chat.Send(ctx, me.ID, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		if !sent {
			fmt.Fprintln(c.out, "Nothing sent")
			return nil
		}
		c.success("Sent to %s", args[1])
		return nil
	default:
		return fmt.Errorf("unknown chat command: %s (use peers, thread, send)", args[0])
	}
}

func (c *cli) cmdStaff(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	opts, positional, err := parseFlags(args[1:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		members, err := c.app.Admin.ListStaff(ctx)
		if err != nil {
			return err
		}
		c.heading("Staff")
		w := c.table()
		fmt.Fprintln(w, "  ID\tNAME\tDESIGNATION\tCONTACT")
		fmt.Fprintln(w, "  --\t----\t-----------\t-------")
		for _, m := range members {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", m.ID, m.Name, m.Designation, m.Contact)
		}
		w.Flush()
		fmt.Fprintln(c.out)
		return nil
	case "save":
		m, err := c.app.Admin.SaveStaff(ctx, records.Staff{
			ID:          opts["id"],
			Name:        opts["name"],
			Designation: opts["designation"],
			Contact:     opts["contact"],
		})
		if err != nil {
			return err
		}
		c.success("Saved %s (%s)", m.Name, m.ID)
		return nil
	case "delete":
		if len(positional) == 0 {
			return fmt.Errorf("usage: staff delete <id>")
		}
		if err := c.app.Admin.DeleteStaff(ctx, positional[0]); err != nil {
			return err
		}
		c.success("Deleted %s", positional[0])
		return nil
	default:
		return fmt.Errorf("unknown staff command: %s (use list, save, delete)", args[0])
	}
}

func (c *cli) cmdTimetable(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	opts, positional, err := parseFlags(args[1:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		entries, err := c.app.Admin.Timetable(ctx, records.ClassName(opts["class"]), opts["section"])
		if err != nil {
			return err
		}
		c.heading("Timetable")
		w := c.table()
		fmt.Fprintln(w, "  DAY\tTIME\tCLASS\tSECTION\tSUBJECT\tID")
		fmt.Fprintln(w, "  ---\t----\t-----\t-------\t-------\t--")
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\t%s-%s\t%s\t%s\t%s\t%s\n", e.Day, e.StartTime, e.EndTime, e.Class, e.Section, e.Subject, e.ID)
		}
		w.Flush()
		fmt.Fprintln(c.out)
		return nil
	case "save":
		e, err := c.app.Admin.SaveTimetableEntry(ctx, records.TimeTableEntry{
			ID:        opts["id"],
			Day:       opts["day"],
			StartTime: opts["start"],
			EndTime:   opts["end"],
			Class:     records.ClassName(opts["class"]),
			Section:   opts["section"],
			Subject:   opts["subject"],
			TeacherID: opts["teacher"],
		})
		if err != nil {
			return err
		}
		c.success("Saved %s %s %s-%s (%s)", e.Subject, e.Day, e.StartTime, e.EndTime, e.ID)
		return nil
	case "delete":
		if len(positional) == 0 {
			return fmt.Errorf("usage: timetable delete <id>")
		}
		if err := c.app.Admin.DeleteTimetableEntry(ctx, positional[0]); err != nil {
			return err
		}
		c.success("Deleted %s", positional[0])
		return nil
	default:
		return fmt.Errorf("unknown timetable command: %s (use list, save, delete)", args[0])
	}
}
