package widget

import (
	"fmt"
	"strings"
)

// Snippet is a copy-paste install snippet for one host framework.
type Snippet struct {
	Framework string `json:"framework"`
	Label     string `json:"label"`
	Code      string `json:"code"`
}

// EmbedSnippets returns install snippets for every supported framework, in a
// fixed order.
func EmbedSnippets(baseURL, chatbotID string) []Snippet {
	src := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/widget.js"
	id := chatbotID

	return []Snippet{
		{
			Framework: "html",
			Label:     "HTML",
			Code: fmt.Sprintf(`<!-- Paste before </body> -->
<script src="%s" %s="%s" async></script>`, src, ChatbotIDAttribute, id),
		},
		{
			Framework: "react",
			Label:     "React",
			Code: fmt.Sprintf(`import { useEffect } from "react";

export function ChatWidget() {
  useEffect(() => {
    if (document.getElementById("%[3]s")) return;
    const s = document.createElement("script");
    s.src = "%[1]s";
    s.async = true;
    s.setAttribute("%[4]s", "%[2]s");
    document.body.appendChild(s);
  }, []);
  return null;
}`, src, id, DefaultContainerID, ChatbotIDAttribute),
		},
		{
			Framework: "vue",
			Label:     "Vue",
			Code: fmt.Sprintf(`<script setup>
import { onMounted } from "vue";

onMounted(() => {
  if (document.getElementById("%[3]s")) return;
  const s = document.createElement("script");
  s.src = "%[1]s";
  s.async = true;
  s.setAttribute("%[4]s", "%[2]s");
  document.body.appendChild(s);
});
</script>`, src, id, DefaultContainerID, ChatbotIDAttribute),
		},
		{
			Framework: "nextjs",
			Label:     "Next.js",
			Code: fmt.Sprintf(`import Script from "next/script";

export default function ChatWidget() {
  return <Script src="%s" %s="%s" strategy="afterInteractive" />;
}`, src, ChatbotIDAttribute, id),
		},
		{
			Framework: "wordpress",
			Label:     "WordPress",
			Code: fmt.Sprintf(`// functions.php
add_action('wp_footer', function () {
    echo '<script src="%s" %s="%s" async></script>';
});`, src, ChatbotIDAttribute, id),
		},
	}
}
