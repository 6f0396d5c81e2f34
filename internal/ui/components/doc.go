// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components renders the pieces of the chatterm screens.

  - CodeBlock (codeblock.go): a code segment, highlighted with Chroma. The
    first line may carry a language hint, shown as a badge.
  - ProseRenderer (prose.go): prose segments through Glamour, cached per
    theme and width.
  - TurnView (turn.go): one chat turn with avatar, bubble and copy button.
  - ToastManager (toast.go): timed notifications, newest last.
  - RenderHeader, RenderStatusBar (header.go): the top and bottom bars.
  - RenderConfirm (dialog.go): the new-chat confirmation.

Components are stateless renderers over a *styles.Theme, except the toast
manager, which the root model owns.
*/
package components
