package gen

import (
	"fmt"
	"strings"

	"tuluyen/internal/model"
)

func characterBlock(ch model.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trạng thái người dùng hiện tại:\n")
	fmt.Fprintf(&b, "- Cấp độ: %d\n", ch.Level)
	fmt.Fprintf(&b, "- Cảnh giới: %s\n", ch.Realm)
	fmt.Fprintf(&b, "- Vàng: %d\n", ch.Gold)
	fmt.Fprintf(&b, "- Chỉ số: Thể Lực %d, Trí Lực %d, Tinh Thần %d, Xã Giao %d, Tài Chính %d\n",
		ch.Stats.Strength, ch.Stats.Intellect, ch.Stats.Spirit, ch.Stats.Social, ch.Stats.Finance)
	return b.String()
}

const taskShape = `Mỗi nhiệm vụ là một object JSON với các trường bắt buộc:
"title" (string), "description" (string), "xp" (integer), "stat" (một trong
"strength", "intellect", "spirit", "social", "finance"), "statReward" (integer),
"gold" (integer); trường tùy chọn "itemReward" là một object
{"name","description","type","rarity","stats"} với "type" thuộc
{"weapon","armor","accessory"}, "rarity" thuộc
{"common","uncommon","rare","epic"}, và "stats" là object các chỉ số thưởng.`

func taskPrompt(ch model.Character, existingTitles []string, diaryEntry string) string {
	var b strings.Builder
	b.WriteString("Bạn là một \"Hệ Thống Tu Luyện\" AI, giúp người dùng phát triển bản thân bằng các nhiệm vụ trong đời thực.\n")
	b.WriteString(characterBlock(ch))
	if diaryEntry != "" {
		fmt.Fprintf(&b, "Nhật ký ngày hôm qua của người dùng (hãy cân nhắc khi tạo nhiệm vụ): %q\n", diaryEntry)
	}
	b.WriteString("\nTạo ra 3 nhiệm vụ mới mẻ, đa dạng, thử thách vừa phải, là hành động cụ thể trong đời thực.\n")
	b.WriteString("- Ưu tiên các chỉ số thấp để phát triển cân bằng. xp trong khoảng 10-100, statReward 1-5, gold 5-50.\n")
	b.WriteString("- Giọng văn lạnh lùng, bí ẩn như một hệ thống AI tối cao. Nhiệm vụ bằng tiếng Việt.\n")
	b.WriteString("- Chỉ hiếm khi thêm itemReward (Pháp Bảo) cho nhiệm vụ đặc biệt khó.\n")
	if len(existingTitles) > 0 {
		fmt.Fprintf(&b, "- Không trùng lặp với các nhiệm vụ đã có: %s.\n", strings.Join(existingTitles, ", "))
	}
	b.WriteString("\n" + taskShape + "\n")
	b.WriteString("Trả về DUY NHẤT một mảng JSON các nhiệm vụ.")
	return b.String()
}

func eventTaskPrompt(ch model.Character, ev model.UserEvent) string {
	var b strings.Builder
	b.WriteString("Bạn là một \"Hệ Thống Tu Luyện\" AI. Người dùng có một sự kiện quan trọng sắp diễn ra.\n")
	fmt.Fprintf(&b, "Sự kiện: %q, ngày diễn ra: %s\n", ev.Name, ev.Date)
	b.WriteString(characterBlock(ch))
	b.WriteString("\nTạo một chuỗi 2-3 nhiệm vụ chuẩn bị đặc biệt cho sự kiện này, bằng tiếng Việt.\n")
	b.WriteString("- Phần thưởng có thể cao hơn nhiệm vụ hàng ngày; có thể thêm một itemReward loại uncommon.\n")
	b.WriteString("- Giọng văn uy nghiêm, như ban phát nhiệm vụ tối quan trọng.\n")
	b.WriteString("\n" + taskShape + "\n")
	b.WriteString("Trả về DUY NHẤT một mảng JSON các nhiệm vụ.")
	return b.String()
}

func encounterPrompt(ch model.Character) string {
	var b strings.Builder
	b.WriteString("Bạn là một \"Hệ Thống Tu Luyện\" AI. Hãy tạo một \"Kỳ Ngộ\": một câu chuyện ngắn thần bí")
	b.WriteString(" (nhặt được bí kíp, gặp cao nhân, phát hiện linh thảo...) dẫn đến MỘT nhiệm vụ DUY NHẤT trong đời thực.\n")
	b.WriteString(characterBlock(ch))
	b.WriteString("\nPhần thưởng cao hơn nhiệm vụ hàng ngày (khoảng 50-150 EXP); rất nên có itemReward hiếm.\n")
	b.WriteString("Giọng văn bí ẩn, bằng tiếng Việt.\n")
	b.WriteString("\n" + taskShape + "\n")
	b.WriteString(`Trả về DUY NHẤT một object JSON {"story": string, "task": nhiệm vụ}.`)
	return b.String()
}

func techniquePrompt(ch model.Character, existingTitles []string) string {
	var b strings.Builder
	b.WriteString("Bạn là một \"Hệ Thống Tu Luyện\" AI. Hãy tạo các \"Công Pháp\": nhiệm vụ dài hạn, mất nhiều tuần hoặc tháng.\n")
	b.WriteString(characterBlock(ch))
	b.WriteString("\nTạo ra 2 Công Pháp mới, là mục tiêu lớn đo lường được (ví dụ: đọc 10 quyển sách, chạy tổng cộng 100km).\n")
	b.WriteString("- xp từ 500 đến 2000, statReward từ 10 đến 25, gold từ 200 đến 1000.\n")
	b.WriteString("- Giọng văn uy nghiêm hùng tráng, bằng tiếng Việt.\n")
	if len(existingTitles) > 0 {
		fmt.Fprintf(&b, "- Không trùng lặp với các công pháp đã có: %s.\n", strings.Join(existingTitles, ", "))
	}
	b.WriteString("\n" + taskShape + "\n")
	b.WriteString("Trả về DUY NHẤT một mảng JSON các công pháp.")
	return b.String()
}

func shopPrompt(ch model.Character) string {
	var b strings.Builder
	b.WriteString("Bạn là một \"Hệ Thống Tu Luyện\" AI quản lý \"Thương Thành\" (cửa hàng làm mới mỗi ngày).\n")
	b.WriteString(characterBlock(ch))
	b.WriteString("\nTạo 5-6 vật phẩm (Pháp Bảo) để bán, đa dạng về loại và độ hiếm, tên và mô tả phong cách tu tiên, bằng tiếng Việt.\n")
	b.WriteString("- Giá theo độ hiếm: common 50-150, uncommon 150-400, rare 400-1000, epic 1000-3000.\n")
	b.WriteString("- Nếu cấp độ người dùng > 20, nên có ít nhất một vật phẩm rare hoặc epic.\n")
	b.WriteString(`Mỗi vật phẩm là {"price": integer, "item": {"name","description","type","rarity","stats"}}` + "\n")
	b.WriteString("với \"type\" thuộc {\"weapon\",\"armor\",\"accessory\"} và \"rarity\" thuộc {\"common\",\"uncommon\",\"rare\",\"epic\"}.\n")
	b.WriteString("Trả về DUY NHẤT một mảng JSON các vật phẩm.")
	return b.String()
}

func avatarPrompt(ch model.Character, prompt string) string {
	return fmt.Sprintf(
		"Create a profile picture for a fantasy cultivator character.\n"+
			"Character Name: %s\nRealm: %s\nLevel: %d\nDescription: %s.\n"+
			"Style: Anime, mystical, digital painting, with a glowing energy aura fitting for a cultivator. "+
			"The image should be a portrait focusing on the character's face and upper body.",
		ch.Name, ch.Realm, ch.Level, prompt)
}
