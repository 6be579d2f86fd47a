package engine

const defaultTimerSeconds = 60

const (
	msgAccessDenied    = "❌ Access denied!"
	msgUnknownCommand  = "Unknown command."
	msgNothingToCancel = "Nothing to cancel."
	msgCancelled       = "❌ Operation cancelled."

	msgAdminGreeting = "👋 Hello, admin!\n\n" +
		"/new_category — create a category\n" +
		"/categories — list categories\n" +
		"/upload [CAT_ID] — upload files\n" +
		"/add_channel — register a mandatory channel\n" +
		"/channels — list mandatory channels\n" +
		"/remove_channel <ID> — remove a channel\n" +
		"/post_message [CAT_ID] — configure the post-delivery message\n" +
		"/timer on|off [seconds] — toggle the auto-delete timer\n" +
		"/add_admin <USER_ID> — promote an admin\n" +
		"/remove_admin <USER_ID> — demote an admin"
	msgUserGreeting = "👋 Hello! Use a category link to receive its files."

	msgAskCategoryName      = "Send the name for the new category, or /cancel:"
	msgWantCategoryName     = "Please send the category name as plain text, or /cancel."
	msgCategoryNameTaken    = "❌ A category with that name already exists. Send another name, or /cancel."
	msgCategoryCreateFailed = "❌ Could not create the category, try again later."
	msgCategoryNotFound     = "❌ Category not found!"
	msgNoCategories         = "📂 No categories yet!"

	msgChooseUploadCategory = "Choose the category to upload into:"
	msgUploadStarted        = "📤 Upload mode on! Send your files.\n" +
		"When done: /finish_upload\nTo discard: /cancel"
	msgWantFiles        = "Send a document, photo, video or audio file. /finish_upload to save, /cancel to discard."
	msgNoActiveUpload   = "❌ No upload is active!"
	msgNoFilesReceived  = "❌ No files received!"
	msgUploadSaveFailed = "❌ Could not save the files, try again later."

	msgAskChannelID      = "Send the channel id (example: -1001234567890), or /cancel:"
	msgInvalidChannelID  = "❌ Invalid channel id, expected -100 followed by digits (example: -1001234567890). Try again, or /cancel."
	msgAskChannelName    = "✅ Got the id! Now send the channel name:"
	msgWantChannelName   = "Please send a non-empty channel name, or /cancel."
	msgAskChannelLink    = "✅ Got the name! Now send the invite link:"
	msgInvalidInviteLink = "❌ Invalid invite link, expected https://t.me/... Try again, or /cancel."
	msgChannelAdded      = "✅ Channel added!"
	msgChannelExists     = "❌ That channel is already registered."
	msgChannelAddFailed  = "❌ Could not add the channel, try again later."
	msgChannelNotFound   = "❌ Channel not found!"
	msgChannelRemoved    = "✅ Channel removed!"
	msgNoChannels        = "📢 No mandatory channels registered!"
	msgRemoveChannelUsage = "Usage: /remove_channel -1001234567890"

	msgAddAdminUsage     = "Usage: /add_admin 123456789"
	msgRemoveAdminUsage  = "Usage: /remove_admin 123456789"
	msgInvalidUserID     = "❌ Invalid user id, send a number."
	msgAdminNotFound     = "❌ That user is not an admin."
	msgCannotDemoteSuper = "❌ Seed admins cannot be removed."

	msgTimerUsage       = "Usage: /timer on [seconds] or /timer off"
	msgPostDeleteNotice = "⏰ Viewing time is over!"

	msgChoosePostMessageCategory = "Choose the category to configure the post-message for:"
	msgAskPostMessageKind        = "What kind of post-message should follow the files?"
	msgWantPostMessageKind       = "Choose a kind with the buttons above, or /cancel."
	msgPostMessageSaved          = "✅ Post-message saved!"
	msgPostMessageSaveFailed     = "❌ Could not save the post-message, try again later."
	msgPostMessageDeleted        = "✅ Post-message removed."
	msgPostMessageDeleteFailed   = "❌ Could not remove the post-message, try again later."

	msgJoinFirst     = "⚠️ Join the channels below first to get access:"
	msgNothingToSend = "❌ There are no files to show!"
)
