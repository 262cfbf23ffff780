package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/personium-go/internal/location"
)

const dayLayout = "2006-01-02"

func newLocationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations YYYY-MM-DD",
		Short: "List the stays and moves of a day with their visibility",
		Long: `List the stays and moves recorded on a day, oldest first, together with
the exported file of each record and whether that file is public. The day is
interpreted in locations.timezone.`,
		Args: cobra.ExactArgs(1),
		RunE: runLocations,
	}
}

func newVisibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visibility <path>",
		Short: "Show whether an exported file is public",
		Args:  cobra.ExactArgs(1),
		RunE:  runVisibility,
	}
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <path>",
		Short: "Make an exported file readable by anyone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetVisibility(cmd, args[0], location.Public)
		},
	}
}

func newUnpublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <path>",
		Short: "Remove public read access from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetVisibility(cmd, args[0], location.Private)
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <path>",
		Short: "Flip an exported file between public and private",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}
}

// locationOutput is one row of `locations --json`.
type locationOutput struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Name         string  `json:"name,omitempty"`
	Address      string  `json:"address,omitempty"`
	PlaceID      string  `json:"place_id,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	ActivityType string  `json:"activity_type,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
	Path         string  `json:"path"`
	Visibility   string  `json:"visibility"`
}

func runLocations(cmd *cobra.Command, args []string) error {
	day, err := time.ParseInLocation(dayLayout, args[0], resolvedCfg.Location)
	if err != nil {
		return fmt.Errorf("invalid day %q: expected YYYY-MM-DD", args[0])
	}

	logger := buildLogger()
	s := newCellSession(resolvedCfg, logger)
	ctx := cmd.Context()

	if err := s.login(ctx); err != nil {
		return err
	}

	entries, err := s.client.DayWithVisibility(ctx, day)
	if err != nil {
		return err
	}

	logger.Debug("locations listed", "day", args[0], "count", len(entries))

	if flagJSON {
		return printLocationsJSON(cmd.OutOrStdout(), entries, resolvedCfg.Location)
	}

	printLocationsText(cmd.OutOrStdout(), entries, resolvedCfg.Location)

	return nil
}

func printLocationsJSON(w io.Writer, entries []location.Entry, loc *time.Location) error {
	out := make([]locationOutput, 0, len(entries))

	for _, e := range entries {
		r := e.Record
		out = append(out, locationOutput{
			ID:           r.ID,
			Kind:         string(r.Kind),
			Start:        formatTimestamp(r.StartTime.In(loc)),
			End:          formatTimestamp(r.EndTime.In(loc)),
			Name:         r.Name,
			Address:      r.Address,
			PlaceID:      r.PlaceID,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			ActivityType: r.ActivityType,
			Distance:     r.Distance,
			Path:         e.Path,
			Visibility:   e.Visibility.String(),
		})
	}

	return printJSON(w, out)
}

func printLocationsText(w io.Writer, entries []location.Entry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No records.")
		return
	}

	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		r := e.Record
		rows = append(rows, []string{
			formatClock(r.StartTime.In(loc)),
			formatClock(r.EndTime.In(loc)),
			string(r.Kind),
			describeRecord(r),
			e.Visibility.String(),
			e.Path,
		})
	}

	printTable(w, []string{"START", "END", "KIND", "WHAT", "VISIBILITY", "FILE"}, rows)
}

// describeRecord is the place name for a stay and activity plus distance
// for a move.
func describeRecord(r location.Record) string {
	if r.Kind == location.KindStay {
		if r.Name != "" {
			return r.Name
		}

		return r.Address
	}

	activity := r.ActivityType
	if activity == "" {
		activity = "move"
	}

	return fmt.Sprintf("%s, %s", activity, formatDistance(r.Distance))
}

// visibilityOutput is the JSON schema for the visibility commands.
type visibilityOutput struct {
	Path       string `json:"path"`
	Visibility string `json:"visibility"`
}

func printVisibility(w io.Writer, path string, v location.Visibility) error {
	if flagJSON {
		return printJSON(w, visibilityOutput{Path: path, Visibility: v.String()})
	}

	fmt.Fprintf(w, "%s  %s\n", v, path)

	return nil
}

func runVisibility(cmd *cobra.Command, args []string) error {
	s := newCellSession(resolvedCfg, buildLogger())
	ctx := cmd.Context()

	if err := s.login(ctx); err != nil {
		return err
	}

	path, err := s.resolvePath(args[0])
	if err != nil {
		return err
	}

	v, err := s.client.Visibility(ctx, path)
	if err != nil {
		return err
	}

	return printVisibility(cmd.OutOrStdout(), path, v)
}

func runSetVisibility(cmd *cobra.Command, arg string, v location.Visibility) error {
	s := newCellSession(resolvedCfg, buildLogger())
	ctx := cmd.Context()

	if err := s.login(ctx); err != nil {
		return err
	}

	path, err := s.resolvePath(arg)
	if err != nil {
		return err
	}

	if err := s.client.SetVisibility(ctx, path, v); err != nil {
		return err
	}

	statusf("Made %s.\n", v)

	return printVisibility(cmd.OutOrStdout(), path, v)
}

func runToggle(cmd *cobra.Command, args []string) error {
	s := newCellSession(resolvedCfg, buildLogger())
	ctx := cmd.Context()

	if err := s.login(ctx); err != nil {
		return err
	}

	path, err := s.resolvePath(args[0])
	if err != nil {
		return err
	}

	v, err := s.client.Toggle(ctx, path)
	if err != nil {
		return err
	}

	return printVisibility(cmd.OutOrStdout(), path, v)
}
