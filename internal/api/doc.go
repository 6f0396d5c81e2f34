// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the JSON-over-HTTP boundary between chatterm and the chat
// service.
//
// Every request goes through Client.Call, which returns a Result for any
// completed exchange. Transport failures become apperr.NetworkFailure and
// non-2xx answers become apperr.ServerRejected carrying the server's own
// message, so callers can turn any error straight into a notification.
//
// Example:
//
//	client, err := api.NewClient(api.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	res, err := client.Login(ctx, "a@b.com", "secret")
//	if err != nil {
//	    toast(apperr.Notice(err))
//	    return
//	}
//	navigate(res.Body.Redirect)
package api
