// Package gxl provides a workflow automation engine driven by the WFL language.
//
// WFL files declare modules holding props, environments and flows. The engine loads an entry file
// and its extern modules, assembles mixes and references, sequences the requested flows with their
// pre, post, entry and exit dependencies and executes them, recording every step into a task.Job.
//
//	srv, _ := gxl.New()
//	job, err := srv.Run(ctx, &gxl.Request{Conf: "_gal/work.gxl", Envs: []string{"dev"}, Flows: []string{"build"}})
//
// Actions are pluggable through WithExtensionServices; the built-in set covers shell, tpl, read,
// echo, assert, tar, untar, download, run, cmd, ver and vault.
package gxl
