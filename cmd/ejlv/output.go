package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AndreCostaaa/ejlv-builder/internal/config"
	"github.com/AndreCostaaa/ejlv-builder/internal/serial"
	"github.com/AndreCostaaa/ejlv-builder/internal/store"
)

func printPorts(w io.Writer) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tUSB\tVID:PID\tSERIAL\tPRODUCT")
	for _, p := range ports {
		ids := ""
		if p.IsUSB {
			ids = p.VID + ":" + p.PID
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", p.Name, p.IsUSB, ids, p.SerialNumber, p.Product)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, st *store.Store, limit int) error {
	runs, err := st.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tBOARD\tSTAGE\tRESULT\tDURATION\tFALLBACK\tDETAIL")
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		status := "ok"
		detail := r.ResultPath
		if !r.Success {
			status = r.ErrorKind
			detail = r.Error
			if r.SerialLog != "" {
				detail = r.SerialLog
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Board, r.Stage, status, r.Duration, r.Fallback, detail)
	}
	return tw.Flush()
}

// showConfig prints the effective config and, when save is set, persists it
// so later runs need no flags.
func showConfig(w io.Writer, cfg config.Config, workspace string, save, global bool) error {
	if save {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg, workspace, global); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
