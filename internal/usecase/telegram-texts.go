package usecase

import "github.com/iamvkosarev/lunaris-ai/pkg/local"

const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandNew      = "new"
	CommandChats    = "chats"
	CommandClear    = "clear"
	CommandThink    = "think"
	CommandSearch   = "search"
	CommandLang     = "lang"
	CommandPersona  = "persona"
	CommandRoleplay = "roleplay"
	CommandLearn    = "learn"
	CommandKB       = "kb"
	CommandImagine  = "imagine"
	CommandEnhance  = "enhance"
	CommandExport   = "export"
	CommandStop     = "stop"
)

var (
	textServerError = local.NewSet(
		"Something wrong with me. Try later",
		local.NewTrans(local.Ara, "حدث خطأ ما. حاول لاحقاً"),
	)
	textUserNoAccess = local.NewSet(
		"You are not allowed to use this bot",
		local.NewTrans(local.Ara, "غير مسموح لك باستخدام هذا البوت"),
	)
	textUserModelNoAccess = local.NewSet(
		"You are not allowed to use this model",
		local.NewTrans(local.Ara, "غير مسموح لك باستخدام هذا النموذج"),
	)
	textCommandStart = local.NewSet(
		"Welcome to Lunaris! Write something to start a conversation. Use /new to pick a model and start a new chat, /help to see everything I can do.",
		local.NewTrans(
			local.Ara,
			"مرحباً بك في Lunaris! اكتب أي شيء لبدء المحادثة. استخدم /new لاختيار نموذج وبدء محادثة جديدة، و /help لعرض كل ما يمكنني فعله.",
		),
	)
	textCommandHelp = local.NewSet(
		`/new - pick a model and start a new chat
/chats - list and switch chats
/clear - delete all chats
/think - toggle Luna-Think deep reasoning
/search - toggle web search
/lang - switch language (en, ar)
/persona Name | Tone | Context | Memory - set persona, "reset" to restore
/roleplay Character | Description | Scenario | World - start a story
/learn Topic | Level | Goal | Style - start a tutoring session
/kb, /kb add Title: content, /kb del N, /kb clear - knowledge base
/imagine prompt - generate an image
/enhance prompt - improve a prompt
/export - export the current chat as text
/stop - stop the current answer`,
		local.NewTrans(
			local.Ara,
			`/new - اختيار نموذج وبدء محادثة جديدة
/chats - عرض المحادثات والتبديل بينها
/clear - حذف كل المحادثات
/think - تفعيل أو إيقاف التفكير العميق
/search - تفعيل أو إيقاف البحث في الويب
/lang - تغيير اللغة (en, ar)
/persona الاسم | النبرة | السياق | الذاكرة - ضبط الشخصية، "reset" للاستعادة
/roleplay الشخصية | الوصف | المشهد | العالم - بدء قصة
/learn الموضوع | المستوى | الهدف | الأسلوب - بدء جلسة تعلم
/kb، /kb add العنوان: المحتوى، /kb del N، /kb clear - قاعدة المعرفة
/imagine وصف - توليد صورة
/enhance نص - تحسين النص
/export - تصدير المحادثة الحالية
/stop - إيقاف الإجابة الحالية`,
		),
	)
	textCommandUnknown = local.NewSet(
		"I don't know that command",
		local.NewTrans(local.Ara, "لا أعرف هذا الأمر"),
	)
	textSelectModel = local.NewSet(
		"Select model to create new chat",
		local.NewTrans(local.Ara, "اختر نموذجاً لبدء محادثة جديدة"),
	)
	textHaveNoAvailableModels = local.NewSet(
		"You dont have any available models",
		local.NewTrans(local.Ara, "لا توجد نماذج متاحة لك"),
	)
	textSelectedModelFormat = local.NewSet(
		"Started new chat with %s model",
		local.NewTrans(local.Ara, "بدأت محادثة جديدة مع النموذج %s"),
	)
	textFailedToGetChats = local.NewSet(
		"Failed to get all your chats",
		local.NewTrans(local.Ara, "تعذر جلب محادثاتك"),
	)
	textChatsFormat = local.NewSet(
		"Now you have %d chats.",
		local.NewTrans(local.Ara, "لديك الآن %d محادثات."),
	)
	textSwitchedChatFormat = local.NewSet(
		"Switched to chat: %s",
		local.NewTrans(local.Ara, "تم التبديل إلى المحادثة: %s"),
	)
	textClearedChatsFormat = local.NewSet(
		"Deleted %d chats",
		local.NewTrans(local.Ara, "تم حذف %d محادثات"),
	)
	textThinkOn = local.NewSet(
		"🧠 Luna-Think enabled",
		local.NewTrans(local.Ara, "🧠 تم تفعيل التفكير العميق"),
	)
	textThinkOff = local.NewSet(
		"Luna-Think disabled",
		local.NewTrans(local.Ara, "تم إيقاف التفكير العميق"),
	)
	textSearchOn = local.NewSet(
		"🌐 Web search enabled",
		local.NewTrans(local.Ara, "🌐 تم تفعيل البحث في الويب"),
	)
	textSearchOff = local.NewSet(
		"Web search disabled",
		local.NewTrans(local.Ara, "تم إيقاف البحث في الويب"),
	)
	textLanguageSet = local.NewSet(
		"Language: English",
		local.NewTrans(local.Ara, "اللغة: العربية"),
	)
	textPersonaFormat = local.NewSet(
		"Persona: %s\nTone: %s\nContext: %s\nMemory: %s",
		local.NewTrans(local.Ara, "الشخصية: %s\nالنبرة: %s\nالسياق: %s\nالذاكرة: %s"),
	)
	textRoleplayUsage = local.NewSet(
		"Usage: /roleplay Character | Description | Scenario | World",
		local.NewTrans(local.Ara, "الاستخدام: /roleplay الشخصية | الوصف | المشهد | العالم"),
	)
	textLearnUsage = local.NewSet(
		"Usage: /learn Topic | Beginner, Intermediate or Advanced | Goal | Socratic, Direct or Practical",
		local.NewTrans(local.Ara, "الاستخدام: /learn الموضوع | المستوى | الهدف | الأسلوب"),
	)
	textKBEmpty = local.NewSet(
		"Your knowledge base is empty. Add an entry with /kb add Title: content",
		local.NewTrans(local.Ara, "قاعدة المعرفة فارغة. أضف عنصراً عبر /kb add العنوان: المحتوى"),
	)
	textKBUsage = local.NewSet(
		"Usage: /kb, /kb add Title: content, /kb del N, /kb clear",
		local.NewTrans(local.Ara, "الاستخدام: /kb، /kb add العنوان: المحتوى، /kb del N، /kb clear"),
	)
	textKBAddedFormat = local.NewSet(
		"Saved to knowledge base: %s",
		local.NewTrans(local.Ara, "تم الحفظ في قاعدة المعرفة: %s"),
	)
	textKBRemovedFormat = local.NewSet(
		"Removed from knowledge base: %s",
		local.NewTrans(local.Ara, "تم الحذف من قاعدة المعرفة: %s"),
	)
	textKBCleared = local.NewSet(
		"Knowledge base cleared",
		local.NewTrans(local.Ara, "تم مسح قاعدة المعرفة"),
	)
	textImagineUsage = local.NewSet(
		"Usage: /imagine a description of the image",
		local.NewTrans(local.Ara, "الاستخدام: /imagine وصف الصورة"),
	)
	textImageFailed = local.NewSet(
		"⚠️ Image generation failed: %s",
		local.NewTrans(local.Ara, "⚠️ فشل توليد الصورة: %s"),
	)
	textEnhanceUsage = local.NewSet(
		"Usage: /enhance your prompt",
		local.NewTrans(local.Ara, "الاستخدام: /enhance النص"),
	)
	textStopped = local.NewSet(
		"⏹ Stopped.",
		local.NewTrans(local.Ara, "⏹ تم الإيقاف."),
	)
	textNothingToStop = local.NewSet(
		"Nothing to stop",
		local.NewTrans(local.Ara, "لا يوجد ما يمكن إيقافه"),
	)
	textBusy = local.NewSet(
		"I'm still answering. Use /stop to cancel.",
		local.NewTrans(local.Ara, "ما زلت أجيب. استخدم /stop للإلغاء."),
	)
	textThinking = local.NewSet(
		"💭 Thinking...",
		local.NewTrans(local.Ara, "💭 أفكر..."),
	)
	textSources = local.NewSet(
		"🔗 Sources:",
		local.NewTrans(local.Ara, "🔗 المصادر:"),
	)
	textSuggestions = local.NewSet(
		"💡 You could ask:",
		local.NewTrans(local.Ara, "💡 يمكنك أن تسأل:"),
	)
	textAttachmentFailed = local.NewSet(
		"Failed to read your attachment",
		local.NewTrans(local.Ara, "تعذر قراءة المرفق"),
	)
)
